package logger

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"

	tsLayout = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	sink     lineSink
	format   logFormat
	keyOrder []string
}

// structuredHandler renders each record as one flat JSON object or
// key=value line. Groups become dotted keys.
type structuredHandler struct {
	cfg    handlerConfig
	preset fields
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if len(cfg.keyOrder) == 0 {
		cfg.keyOrder = defaultOrder()
	}
	return &structuredHandler{cfg: cfg, preset: fields{}}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.sink == nil {
		return errors.New("logger: sink not initialized")
	}
	asJSON := h.cfg.format == formatJSON

	f := make(fields, len(h.preset)+16)
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(tsLayout)
	f["level"] = levelOf(r.Level)
	if asJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	for k, v := range h.preset {
		f[k] = v
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.prefix, a)
		return true
	})
	f.fromContext(ctx)
	f.finish(r.Message, asJSON)

	var line []byte
	if asJSON {
		var err error
		if line, err = f.encodeJSON(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = f.encodeKV(h.cfg.keyOrder)
	}
	return h.cfg.sink.WriteLine(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.preset = make(fields, len(h.preset)+len(attrs))
	for k, v := range h.preset {
		clone.preset[k] = v
	}
	for _, a := range attrs {
		clone.preset.add(h.prefix, a)
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

// fields holds one record's rendered values keyed by output name.
type fields map[string]any

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func (f fields) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if v.Kind() == slog.KindDuration {
		f[msKey(key)] = RoundMS(v.Duration()).Milliseconds()
		return
	}
	if val, ok := plainValue(v); ok {
		f[key] = val
	}
}

// msKey renames duration attributes to their *_ms form.
func msKey(key string) string {
	if key == "duration" {
		return "duration_ms"
	}
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func plainValue(v slog.Value) (any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return v.Bool(), true
	case slog.KindInt64:
		return v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return int64(u), true
		}
		return v.Uint64(), true
	case slog.KindFloat64:
		return v.Float64(), true
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return nil, false
	case error:
		return x.Error(), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) setDefault(key string, v any, ok bool) {
	if !ok {
		return
	}
	if _, present := f[key]; !present {
		f[key] = v
	}
}

func (f fields) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	rid := RIDFrom(ctx)
	f.setDefault("rid", rid, rid != "")
	uid := UserIDFrom(ctx)
	f.setDefault("user_id", uid, uid != 0)
	upd := UpdateIDFrom(ctx)
	f.setDefault("update_id", int64(upd), upd != 0)
	cid := ChatIDFrom(ctx)
	f.setDefault("chat_id", cid, cid != 0)
	hid := HandlerFrom(ctx)
	f.setDefault("handler", hid, hid != "")
}

// finish fills defaults, normalises enumerations and drops empty values.
func (f fields) finish(msg string, asJSON bool) {
	if rid := f.str("rid"); rid != "" {
		if short := CompactRID(rid); short != rid {
			f["rid"] = short
			if asJSON {
				f["rid_full"] = rid
			}
		}
	}
	if f.str("event") == "" {
		f["event"] = cmp.Or(msg, "unknown")
	}
	if f.str("component") == "" {
		f["component"] = "app"
	}
	f["level"] = levelName(f.str("level"))
	if s := f.str("status"); s != "" {
		f["status"], _ = enumValue(s, statusValues)
	}
	if o := f.str("outcome"); o != "" {
		if v, ok := enumValue(o, outcomeValues); ok {
			f["outcome"] = v
		} else {
			delete(f, "outcome")
		}
	}
	for k, v := range f {
		if v == nil || v == "" {
			delete(f, k)
		}
	}
}

// keys lists order first, then the remaining keys sorted.
func (f fields) keys(order []string) []string {
	out := make([]string, 0, len(f))
	taken := make(map[string]bool, len(f))
	for _, k := range order {
		if _, ok := f[k]; ok && !taken[k] {
			out = append(out, k)
			taken[k] = true
		}
	}
	rest := make([]string, 0, len(f)-len(out))
	for k := range f {
		if !taken[k] {
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func (f fields) encodeJSON(order []string) ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range f.keys(order) {
		val, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, k)
		buf = append(buf, ':')
		buf = append(buf, val...)
	}
	return append(buf, '}'), nil
}

func (f fields) encodeKV(order []string) []byte {
	var b strings.Builder
	for i, k := range f.keys(order) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		s := f.str(k)
		if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
			s = strconv.Quote(s)
		}
		b.WriteString(s)
	}
	return []byte(b.String())
}
