package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypePipeline   ErrorType = "pipeline"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Phase identifies the pipeline state an error occurred in
type Phase string

const (
	PhasePreAnalysis Phase = "PRE_ANALYSIS"
	PhaseRules       Phase = "RULES"
	PhaseRewriting   Phase = "REWRITING"
	PhaseScoring     Phase = "SCORING"
)

// AppError represents a structured application error
type AppError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Phase   Phase          `json:"phase,omitempty"`
	Cause   error          `json:"cause,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// newAppError is an unexported helper to create AppError instances
func newAppError(typ ErrorType, code, message string, cause error) *AppError {
	return &AppError{
		Type:    typ,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error constructors for different types
func NewValidationError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, code, message, cause)
}

func NewIOError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeIO, code, message, cause)
}

func NewAIError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeAI, code, message, cause)
}

func NewPipelineError(code string, phase Phase, message string, cause error) *AppError {
	err := newAppError(ErrorTypePipeline, code, message, cause)
	err.Phase = phase
	return err
}

func NewNetworkError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, code, message, cause)
}

func NewConfigError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeConfig, code, message, cause)
}

func NewInternalError(code, message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, code, message, cause)
}

// WithContext adds context to an error
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithPhase tags the error with the pipeline phase it occurred in
func (e *AppError) WithPhase(phase Phase) *AppError {
	e.Phase = phase
	return e
}

// AsAppError unwraps err to the nearest AppError, or nil if there is none
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the AppError code for err, or ErrCodeUnknown for untyped
// errors
func CodeOf(err error) string {
	if appErr := AsAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrCodeUnknown
}

// Retryable reports whether the code indicates a transient condition the
// caller may retry
func Retryable(code string) bool {
	switch code {
	case ErrCodePreAnalysisFailed, ErrCodeRewritingFailed, ErrCodeRateLimit, ErrCodeTimeout:
		return true
	}
	return false
}

// Logger wraps slog with application-specific methods
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates a new structured logger
func NewLogger(level slog.Level) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)

	return &Logger{logger: logger}
}

// LogError logs an application error with appropriate level and context
func (l *Logger) LogError(err error, message string, args ...any) {
	if appErr := AsAppError(err); appErr != nil {
		logArgs := []any{
			"error_type", appErr.Type,
			"error_code", appErr.Code,
			"error_message", appErr.Message,
		}

		if appErr.Phase != "" {
			logArgs = append(logArgs, "phase", appErr.Phase)
		}

		for key, value := range appErr.Context {
			logArgs = append(logArgs, key, value)
		}

		logArgs = append(logArgs, args...)

		l.logger.Error(message, logArgs...)
	} else {
		logArgs := append([]any{"error", err.Error()}, args...)
		l.logger.Error(message, logArgs...)
	}
}

func (l *Logger) Info(message string, args ...any) {
	l.logger.Info(message, args...)
}

func (l *Logger) Debug(message string, args ...any) {
	l.logger.Debug(message, args...)
}

func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(message, args...)
}

// New creates a new logger instance
func New(level string) (*Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	return NewLogger(slogLevel), nil
}

// Pipeline error codes
const (
	ErrCodePreAnalysisFailed = "PRE_ANALYSIS_FAILED"
	ErrCodeRulesFailed       = "RULES_FAILED"
	ErrCodeRewritingFailed   = "REWRITING_FAILED"
	ErrCodeScoringFailed     = "SCORING_FAILED"
	ErrCodeAINotConfigured   = "AI_NOT_CONFIGURED"
	ErrCodeAuthError         = "AUTH_ERROR"
	ErrCodeRateLimit         = "RATE_LIMIT"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeUnknown           = "UNKNOWN_ERROR"
	ErrCodeInvalidJob        = "INVALID_JOB"
	ErrCodeInvalidResume     = "INVALID_RESUME"
)

// Infrastructure error codes
const (
	ErrCodeFileNotFound    = "FILE_NOT_FOUND"
	ErrCodeFileNotReadable = "FILE_NOT_READABLE"
	ErrCodeInvalidFormat   = "INVALID_FORMAT"
	ErrCodeInvalidRequest  = "INVALID_REQUEST"
	ErrCodeMissingAPIKey   = "MISSING_API_KEY"
	ErrCodeNetworkTimeout  = "NETWORK_TIMEOUT"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
)
