package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// EntryLeveller is a zapcore.Core that filters log entries based on the logger name (eg. "engine.resolve"):
// the level of the most specific configured name prefix wins, with "" as the catch-all. Loggers without any
// matching name fall back to the wrapped core's level.
type EntryLeveller struct {
	zapcore.Core

	levels map[string]zapcore.Level
}

func NewEntryLeveller(core zapcore.Core, levels map[string]zapcore.Level) *EntryLeveller {
	copied := make(map[string]zapcore.Level, len(levels))
	for k, v := range levels {
		copied[k] = v
	}
	return &EntryLeveller{Core: core, levels: copied}
}

func (el *EntryLeveller) With(f []zapcore.Field) zapcore.Core {
	return &EntryLeveller{
		Core:   el.Core.With(f),
		levels: el.levels,
	}
}

// Enabled must be at least as permissive as the most verbose configured level, otherwise the logger would
// drop entries before they reach [EntryLeveller.Check].
func (el *EntryLeveller) Enabled(lvl zapcore.Level) bool {
	for _, l := range el.levels {
		if lvl >= l {
			return true
		}
	}
	return el.Core.Enabled(lvl)
}

// LevelFor returns the configured level for `loggerName`, if any.
func (el *EntryLeveller) LevelFor(loggerName string) (zapcore.Level, bool) {
	if lvl, ok := el.levels[loggerName]; ok {
		return lvl, true
	}
	nameParts := strings.Split(loggerName, ".")
	for i := len(nameParts) - 1; i > 0; i-- {
		if lvl, ok := el.levels[strings.Join(nameParts[:i], ".")]; ok {
			return lvl, true
		}
	}
	lvl, ok := el.levels[""]
	return lvl, ok
}

func (el *EntryLeveller) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	level, ok := el.LevelFor(e.LoggerName)
	if !ok {
		return el.Core.Check(e, ce)
	}
	if e.Level < level {
		return ce
	}
	return ce.AddCore(e, el)
}
