// Package security provides the security components shared by the API:
// structured event logging, rate limiting, and input validation.
package security

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// LogLevel classifies a log entry.
type LogLevel string

const (
	LogLevelInfo     LogLevel = "INFO"
	LogLevelWarning  LogLevel = "WARN"
	LogLevelError    LogLevel = "ERROR"
	LogLevelCritical LogLevel = "CRITICAL"
	LogLevelSecurity LogLevel = "SECURITY"
)

// EventType identifies a security-relevant event.
type EventType string

const (
	EventLoginSuccess     EventType = "login_success"
	EventLoginFailure     EventType = "login_failure"
	EventRegistration     EventType = "registration"
	EventEmailVerified    EventType = "email_verified"
	EventPasswordChanged  EventType = "password_changed"
	EventPasswordReset    EventType = "password_reset"
	EventOTPDispatched    EventType = "otp_dispatched"
	EventRateLimited      EventType = "rate_limited"
	EventAccessDenied     EventType = "access_denied"
	EventEditRequested    EventType = "project_edit_requested"
	EventEditApproved     EventType = "project_edit_approved"
	EventEditRejected     EventType = "project_edit_rejected"
)

// LogEntry is the JSON shape of every log line.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      LogLevel               `json:"level"`
	Message    string                 `json:"message"`
	Error      string                 `json:"error,omitempty"`
	EventType  EventType              `json:"event_type,omitempty"`
	ActorID    string                 `json:"actor_id,omitempty"`
	ActorEmail string                 `json:"actor_email,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	UserAgent  string                 `json:"user_agent,omitempty"`
	Method     string                 `json:"method,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Status     int                    `json:"status,omitempty"`
	LatencyMS  int64                  `json:"latency_ms,omitempty"`
	Extra      map[string]interface{} `json:"extra,omitempty"`
}

// Logger emits structured JSON log lines, one entry per line.
type Logger struct {
	output *log.Logger
}

// NewLogger creates a logger writing to stdout.
func NewLogger() *Logger {
	return &Logger{
		output: log.New(os.Stdout, "", 0),
	}
}

func (l *Logger) write(entry LogEntry) {
	entry.Timestamp = time.Now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		// Fall back to plain text rather than losing the event.
		l.output.Printf(`{"level":"ERROR","message":"log marshal failed: %v"}`, err)
		return
	}
	l.output.Println(string(data))
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.write(LogEntry{Level: LogLevelInfo, Message: msg})
}

// Warn logs a warning for unusual but non-fatal conditions.
func (l *Logger) Warn(msg string) {
	l.write(LogEntry{Level: LogLevelWarning, Message: msg})
}

// Error logs a failure. err may be nil.
func (l *Logger) Error(msg string, err error) {
	entry := LogEntry{Level: LogLevelError, Message: msg}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// Critical logs a failure that requires operator attention.
func (l *Logger) Critical(msg string, err error) {
	entry := LogEntry{Level: LogLevelCritical, Message: msg}
	if err != nil {
		entry.Error = err.Error()
	}
	l.write(entry)
}

// SecurityEvent logs an audit-relevant event with actor context.
func (l *Logger) SecurityEvent(event EventType, actorID, actorEmail, ip, userAgent string, extra map[string]interface{}) {
	l.write(LogEntry{
		Level:      LogLevelSecurity,
		Message:    string(event),
		EventType:  event,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		IPAddress:  ip,
		UserAgent:  userAgent,
		Extra:      extra,
	})
}

// HTTPRequest logs one handled request.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMS int64, ip, userAgent string) {
	l.write(LogEntry{
		Level:     LogLevelInfo,
		Message:   fmt.Sprintf("%s %s -> %d (%dms)", method, path, status, latencyMS),
		Method:    method,
		Path:      path,
		Status:    status,
		LatencyMS: latencyMS,
		IPAddress: ip,
		UserAgent: userAgent,
	})
}
