package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	coreconfig "github.com/m3rciful/quizbot/core/config"
)

// options is the logging section of the config resolved into handler terms.
type options struct {
	level     slog.Level
	format    logFormat
	keyOrder  []string
	sampleNum int
	sampleDen int
	profile   string
	filePath  string
}

func optionsFrom(cfg *coreconfig.Config) options {
	opts := options{
		level:     slog.LevelInfo,
		format:    formatJSON,
		keyOrder:  defaultOrder(),
		sampleNum: defaultSampleNum,
		sampleDen: defaultSampleDen,
		profile:   "prod",
	}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	opts.level = parseLevel(lc.Level)
	opts.format = parseFormat(lc.Format, opts.profile)
	if order := splitList(lc.KeysOrder); len(order) > 0 && lc.KeysOrder != "default" {
		opts.keyOrder = order
	}
	if ratio := strings.TrimSpace(lc.DebugSample); ratio != "" {
		opts.sampleNum, opts.sampleDen = parseRatio(ratio)
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		opts.filePath = filepath.Join(dir, file)
	}
	return opts
}

func parseLevel(raw string) slog.Level {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "warning") {
		return slog.LevelWarn
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseFormat(raw, profile string) logFormat {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	if profile == "debug" || profile == "dev" {
		return formatKV
	}
	return formatJSON
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// openLogFile opens path for appending, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
