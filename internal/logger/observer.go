package logger

import (
	"sort"

	"go.uber.org/zap"
)

// Observer writes telemetry events as structured log lines.
type Observer struct {
	logger *zap.Logger
}

// NewObserver creates an observer that logs each event at Info level.
func NewObserver(logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{logger: logger.Named("events")}
}

// LogEvent emits one line with an "event" field followed by the payload in key order.
func (o *Observer) LogEvent(name string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.String("event", name))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, payload[k]))
	}
	o.logger.Info("event", fields...)
}

// NopObserver discards events.
type NopObserver struct{}

// LogEvent implements the observer contract.
func (NopObserver) LogEvent(string, map[string]any) {}
