package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	console "github.com/phsym/console-slog"
	slogmulti "github.com/samber/slog-multi"
	slogtelegram "github.com/samber/slog-telegram/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/m3rciful/yeabuddy/core/buildinfo"
	coreconfig "github.com/m3rciful/yeabuddy/core/config"
)

var (
	// L is the process-wide base logger. It is slog.Default until InitLogger runs.
	L *slog.Logger

	// TG, MIG and TWire are L scoped to the Telegram transport, database
	// migrations and handler wiring.
	TG    *slog.Logger
	MIG   *slog.Logger
	TWire *slog.Logger
)

// Component names passed to Info, Warn and friends.
const (
	ComponentApp     = "app"
	ComponentWorkout = "workout"
	ComponentLLM     = "llm"
	ComponentHistory = "history"
	ComponentHTTP    = "http"
)

var (
	setupOnce sync.Once
	level     slog.LevelVar
	sampler   debugSampler
	traceAll  bool

	sinksMu sync.Mutex
	sinks   []io.Closer // closed in reverse so buffers flush before their files
	closed  bool
)

func init() {
	setBase(slog.Default())
}

func setBase(base *slog.Logger) {
	L = base
	TG = base.With("component", "tg")
	MIG = base.With("component", "db.migrate")
	TWire = base.With("component", "tg.wire")
}

// settings is the logging section of the config with defaults applied.
type settings struct {
	format      logFormat
	keyOrder    []string
	level       slog.Level
	sampleKeep  int
	sampleEvery int
	profile     string

	dir        string
	botFile    string
	errorsFile string
	maxSizeMB  int
	maxBackups int

	alertChat string
	token     string
}

func resolveSettings(cfg *coreconfig.Config) settings {
	s := settings{format: formatJSON, level: slog.LevelInfo, sampleKeep: 1, sampleEvery: 50, profile: "prod"}
	if cfg == nil {
		return s
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		s.profile = p
	}
	s.format = parseFormat(lc.Format, s.profile)
	s.level = parseLevel(lc.Level)
	s.sampleKeep, s.sampleEvery = parseSampleSpec(lc.DebugSample, s.sampleKeep, s.sampleEvery)
	for _, key := range strings.Split(lc.KeysOrder, ",") {
		if key = strings.TrimSpace(key); key != "" && key != "default" {
			s.keyOrder = append(s.keyOrder, key)
		}
	}
	s.dir = strings.TrimSpace(lc.Dir)
	s.botFile = strings.TrimSpace(lc.BotFile)
	s.errorsFile = strings.TrimSpace(lc.ErrorsFile)
	s.maxSizeMB, s.maxBackups = lc.MaxSizeMB, lc.MaxBackups
	s.alertChat = strings.TrimSpace(lc.AlertChatID)
	s.token = cfg.Telegram.Token
	return s
}

// parseFormat falls back to the console renderer for debug and dev profiles.
func parseFormat(raw, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return formatJSON
	case "kv", "text":
		return formatKV
	case "console", "pretty":
		return formatConsole
	}
	if profile == "debug" || profile == "dev" {
		return formatConsole
	}
	return formatJSON
}

func parseLevel(raw string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(strings.ToLower(raw)))); err != nil {
		if strings.EqualFold(strings.TrimSpace(raw), "warning") {
			return slog.LevelWarn
		}
		return slog.LevelInfo
	}
	return lvl
}

// InitLogger installs the configured handler as slog's default. Only the
// first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	setupOnce.Do(func() {
		s := resolveSettings(cfg)
		level.Set(s.level)
		sampler.set(s.sampleKeep, s.sampleEvery)
		traceAll = envFlag("TRACE") || envFlag("LOG_TRACE")

		var h slog.Handler
		if h, err = buildHandler(s); err != nil {
			return
		}
		base := slog.New(h)
		slog.SetDefault(base)
		setBase(base)
		logStartup(s, cfg)
	})
	return err
}

func buildHandler(s settings) (slog.Handler, error) {
	var handlers []slog.Handler
	router := slogmulti.Router()
	route := func(h slog.Handler, match ...func(context.Context, slog.Record) bool) {
		handlers = append(handlers, h)
		router = router.Add(h, match...)
	}

	files, errorsOut := openFiles(s)
	if s.format == formatConsole {
		route(console.NewHandler(os.Stdout, &console.HandlerOptions{Level: &level}))
		if len(files) > 0 {
			route(newRecordHandler(&level, buffered(files...), formatJSON, s.keyOrder))
		}
	} else {
		route(newRecordHandler(&level, buffered(append(files, os.Stdout)...), s.format, s.keyOrder))
	}
	if errorsOut != nil {
		route(newRecordHandler(slog.LevelError, buffered(errorsOut), formatJSON, s.keyOrder))
	}
	if s.alertChat != "" && s.token != "" {
		alerts := slogtelegram.Option{Level: slog.LevelError, Token: s.token, Username: s.alertChat}
		route(alerts.NewTelegramHandler(), isAlert)
	}

	if len(handlers) == 0 {
		return nil, errors.New("logger: no outputs configured")
	}
	return router.Handler(), nil
}

// isAlert forwards errors and records explicitly tagged with alert=true.
func isAlert(_ context.Context, r slog.Record) bool {
	if r.Level >= slog.LevelError {
		return true
	}
	tagged := false
	r.Attrs(func(a slog.Attr) bool {
		tagged = a.Key == "alert" && a.Value.Kind() == slog.KindBool && a.Value.Bool()
		return !tagged
	})
	return tagged
}

func buffered(outputs ...io.Writer) *lineWriter {
	w := newLineWriter(outputs)
	keep(w)
	return w
}

func keep(c io.Closer) {
	sinksMu.Lock()
	sinks = append(sinks, c)
	sinksMu.Unlock()
}

// openFiles returns the rotating bot log outputs and the errors-only output.
// A directory that cannot be created disables file logging.
func openFiles(s settings) (files []io.Writer, errorsOut io.Writer) {
	if s.dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("logger: create log dir %s: %v", s.dir, err)
		return nil, nil
	}
	rotating := func(name string) io.Writer {
		w := &lumberjack.Logger{
			Filename:   filepath.Join(s.dir, name),
			MaxSize:    s.maxSizeMB,
			MaxBackups: s.maxBackups,
			Compress:   true,
		}
		keep(w)
		return w
	}
	if s.botFile != "" {
		files = append(files, rotating(s.botFile))
	}
	if s.errorsFile != "" {
		errorsOut = rotating(s.errorsFile)
	}
	return files, errorsOut
}

func logStartup(s settings, cfg *coreconfig.Config) {
	attrs := []slog.Attr{
		slog.String("component", ComponentApp),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", s.profile),
	}
	if cfg != nil {
		attrs = append(attrs, slog.String("mode", cfg.Telegram.RunMode))
	}
	LogEvent(context.Background(), L, slog.LevelInfo, "startup", attrs...)
}

// Shutdown flushes buffered output and closes log files. It is safe to call twice.
func Shutdown() error {
	sinksMu.Lock()
	defer sinksMu.Unlock()
	if closed {
		return nil
	}
	closed = true

	var errs []error
	for _, c := range slices.Backward(sinks) {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
