package logging

import (
	"go.uber.org/atomic"
	"go.uber.org/zap/zapcore"
)

// Tracker records whether any warning or error entries were written, so a CLI can set its exit status.
type Tracker struct {
	HadWarnings atomic.Bool
	HadErrors   atomic.Bool
}

type trackingCore struct {
	zapcore.Core
	tracker *Tracker
}

// Wrap returns a core that records entries into the tracker before delegating to `core`.
func (t *Tracker) Wrap(core zapcore.Core) zapcore.Core {
	return &trackingCore{Core: core, tracker: t}
}

func (c *trackingCore) With(fields []zapcore.Field) zapcore.Core {
	return &trackingCore{Core: c.Core.With(fields), tracker: c.tracker}
}

func (c *trackingCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.Level >= zapcore.WarnLevel {
		c.tracker.HadWarnings.Store(true)
	}
	if e.Level >= zapcore.ErrorLevel {
		c.tracker.HadErrors.Store(true)
	}
	return c.Core.Check(e, ce)
}
