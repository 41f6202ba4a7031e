package logger

import (
	"context"
	"log/slog"
	"strings"
)

// LogEvent writes an event record through logg, or through the logger
// carried by ctx when logg is nil. The message stays empty; event is the key.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil || !logg.Enabled(ctx, level) {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Event logs on the base logger tagged with component. Update metadata is
// still picked up from ctx by the handler.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	if component = strings.TrimSpace(component); component != "" {
		attrs = append([]slog.Attr{slog.String("component", component)}, attrs...)
	}
	LogEvent(ctx, L, level, event, attrs...)
}

func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug record should be
// written. TRACE=1 in the environment disables sampling.
func ShouldSampleDebug() bool {
	return traceAll || sampler.allow()
}
