package logging

import (
	"context"
	"log/slog"
	"time"

	"swextract/internal/faults"
	"swextract/internal/unit"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Float64(key string, value float64) Attr { return slog.Float64(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Unit returns the subject, visit and record attributes for id.
func Unit(id unit.ID) []Attr {
	return []Attr{
		String(FieldSubject, id.Subject),
		String(FieldVisit, id.Visit),
		String(FieldRecord, id.Record),
	}
}

func Args(attrs ...Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

// WithUnit returns a logger tagged with the unit identifiers.
func WithUnit(logger *slog.Logger, id unit.ID) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(Args(Unit(id)...)...)
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey returns true if any attribute in attrs has the given key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// WarnWithContext logs a warning carrying event_type, error_hint and impact.
// Missing fields are filled in; the hint is derived from any error attribute.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withEventContext(attrs, eventType)
	if !HasAttrKey(attrs, FieldImpact) {
		attrs = append(attrs, String(FieldImpact, "unit completed with warnings"))
	}
	logger.Warn(msg, Args(attrs...)...)
}

// ErrorWithContext logs an error carrying event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.Error(msg, Args(withEventContext(attrs, eventType)...)...)
}

func withEventContext(attrs []Attr, eventType string) []Attr {
	if !HasAttrKey(attrs, FieldEventType) {
		attrs = append(attrs, String(FieldEventType, eventType))
	}
	if !HasAttrKey(attrs, FieldErrorHint) {
		attrs = append(attrs, String(FieldErrorHint, faults.Hint(errorOf(attrs))))
	}
	return attrs
}

// errorOf returns the value of the "error" attribute, if it holds an error.
func errorOf(attrs []Attr) error {
	for _, a := range attrs {
		if a.Key != "error" {
			continue
		}
		if err, ok := a.Value.Any().(error); ok {
			return err
		}
	}
	return nil
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
