package router

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/m3rciful/yeabuddy/core/logger"
	tghelpers "github.com/m3rciful/yeabuddy/core/telegram/helpers"
	"github.com/m3rciful/yeabuddy/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn under the handler name and writes one
// "handler.handled" line with the outcome, the replies queued and the time taken.
func handleWithSummary(c tele.Context, handler string, start time.Time, fn func() error, extras ...slog.Attr) error {
	tghelpers.WithHandler(c, handler)
	err := fn()
	status := "ok"
	if err != nil {
		status = "fail"
	}
	logSummary(c, handler, start, status, err, extras...)
	return err
}

// logSkipped records an update that no handler took.
func logSkipped(c tele.Context, handler string, start time.Time) {
	logSummary(c, handler, start, "skip", nil)
}

func logSummary(c tele.Context, handler string, start time.Time, status string, err error, extras ...slog.Attr) {
	ctx := tghelpers.WithHandler(c, handler)
	replies, kb := middleware.GetCounters(c)
	attrs := append([]slog.Attr{
		slog.String("status", status),
		slog.String("kind", middleware.UpdateKind(c)),
		slog.Int("replies", replies),
		slog.Bool("kb", kb),
		slog.Duration("duration", time.Since(start)),
	}, extras...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelInfo, "handler.handled", attrs...)
}

// normalizeHandlerName turns "/PumpIt" or "view session" into log-friendly names.
func normalizeHandlerName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// deriveErrorCode prefers an oops code, then any Code() string method, then
// the error's type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if o, ok := oops.AsOops(err); ok {
		if code := fmt.Sprint(o.Code()); code != "" && code != "<nil>" {
			return codeName(code)
		}
	}
	var coder interface{ Code() string }
	if errors.As(err, &coder) && strings.TrimSpace(coder.Code()) != "" {
		return codeName(coder.Code())
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return codeName(t.Name())
}

func codeName(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
}
