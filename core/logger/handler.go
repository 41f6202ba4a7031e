package logger

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON    logFormat = "json"
	formatKV      logFormat = "kv"
	formatConsole logFormat = "console"
)

// recordHandler renders records as one JSON object or one key=value line,
// with well-known keys first (see keyRank) and the rest sorted by name.
type recordHandler struct {
	level  slog.Leveler
	out    *lineWriter
	format logFormat
	rank   map[string]int
	attrs  []slog.Attr
	prefix string
}

func newRecordHandler(level slog.Leveler, out *lineWriter, format logFormat, order []string) *recordHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	if len(order) == 0 {
		order = defaultKeyOrder
	}
	rank := make(map[string]int, len(order))
	for i, k := range order {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	return &recordHandler{level: level, out: out, format: format, rank: rank}
}

func (h *recordHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *recordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Concat(h.attrs, prefixed(h.prefix, attrs))
	return &clone
}

func (h *recordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func (h *recordHandler) Handle(ctx context.Context, r slog.Record) error {
	fields := make(map[string]any, 16)
	fields["ts"] = r.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	fields["level"] = r.Level.String()

	for _, a := range h.attrs {
		putAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(fields, h.prefix, a)
		return true
	})
	h.putContext(ctx, fields)

	if s, _ := fields["event"].(string); s == "" {
		fields["event"] = cmp.Or(r.Message, "unknown")
	}
	if s, _ := fields["component"].(string); s == "" {
		fields["component"] = ComponentApp
	}
	if s, ok := fields["status"].(string); ok {
		fields["status"] = normalizeStatus(s)
	}

	line, err := h.render(fields)
	if err != nil {
		return err
	}
	return h.out.WriteLine(line, r.Level >= slog.LevelWarn)
}

func (h *recordHandler) putContext(ctx context.Context, fields map[string]any) {
	m := metaFrom(ctx)
	setDefault := func(k string, v any, empty bool) {
		if _, ok := fields[k]; !ok && !empty {
			fields[k] = v
		}
	}
	setDefault("rid", m.rid, m.rid == "")
	setDefault("update_id", m.updateID, m.updateID == 0)
	setDefault("user_id", m.userID, m.userID == 0)
	setDefault("chat_id", m.chatID, m.chatID == 0)
	setDefault("handler", m.handler, m.handler == "")

	if rid, ok := fields["rid"].(string); ok {
		if short := CompactRID(rid); short != rid {
			fields["rid"] = short
			if h.format == formatJSON {
				fields["rid_full"] = rid
			}
		}
	}
}

func (h *recordHandler) sortedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ra, oka := h.rank[a]
		rb, okb := h.rank[b]
		switch {
		case oka && okb:
			return ra - rb
		case oka:
			return -1
		case okb:
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

func (h *recordHandler) render(fields map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	keys := h.sortedKeys(fields)
	if h.format == formatJSON {
		buf.WriteByte('{')
		for i, k := range keys {
			v, err := json.Marshal(fields[k])
			if err != nil {
				return nil, fmt.Errorf("logger: encode %s: %w", k, err)
			}
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Quote(k))
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteString("}\n")
		return buf.Bytes(), nil
	}
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		buf.WriteString(kvValue(fields[k]))
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// putAttr flattens groups into dotted keys and drops empty values.
func putAttr(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			putAttr(fields, key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if k, v, ok := attrValue(key, a.Value); ok {
		fields[k] = v
	}
}

func attrValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		s := strings.TrimSpace(v.String())
		return key, s, s != ""
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool:
		return key, v.Any(), true
	}
	switch x := v.Any().(type) {
	case nil:
		return key, nil, false
	case error:
		return key, x.Error(), true
	case time.Duration:
		return msKey(key), RoundMS(x).Milliseconds(), true
	case fmt.Stringer:
		s := x.String()
		return key, s, s != ""
	default:
		return key, fmt.Sprint(x), true
	}
}

// msKey makes the unit of a duration attribute part of its name.
func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func kvValue(v any) string {
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

func prefixed(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}
	return []slog.Attr{{Key: prefix, Value: slog.GroupValue(attrs...)}}
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

