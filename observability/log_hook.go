package observability

import (
	"context"

	"github.com/kbukum/apikit/logger"
)

// LogHook writes one structured line per completed request.
type LogHook struct {
	log *logger.Logger
}

// NewLogHook creates a LogHook. A nil logger discards everything.
func NewLogHook(log *logger.Logger) *LogHook {
	if log == nil {
		log = logger.NewNop()
	}
	return &LogHook{log: log.WithComponent("apikit.instrumentation")}
}

// Before implements Hook.
func (h *LogHook) Before(ctx context.Context, _ *Event) context.Context { return ctx }

// After implements Hook.
func (h *LogHook) After(_ context.Context, ev *Event) {
	fields := map[string]interface{}{
		"event_name":       ev.Name,
		"timing":           float64(ev.Duration.Microseconds()) / 1000.0,
		logger.FieldMethod: ev.Method,
		logger.FieldHost:   ev.Host,
		logger.FieldPath:   ev.Target(),
		logger.FieldStatus: ev.StatusCode,
	}
	if ev.RequestID != "" {
		fields[logger.FieldRequestID] = ev.RequestID
	}
	if ev.Client != "" {
		fields["client"] = ev.Client
	}
	if ev.Err != nil {
		fields[logger.FieldError] = ev.Err.Error()
	}
	h.log.Info(ev.Name, fields)
}
