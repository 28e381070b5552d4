package clicommon

import (
	"fmt"
	"strconv"
)

// LevelledFlag is a repeatable boolean flag: each `-v` raises the level by one and `-v=false` lowers it.
// An explicit number (`-v=2`) sets the level directly.
type LevelledFlag int

func (f *LevelledFlag) Set(s string) error {
	if v, err := strconv.ParseBool(s); err == nil {
		switch {
		case v:
			*f++
		case *f > 0:
			*f--
		}
		return nil
	}
	l, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid level %q: must be a boolean or a number", s)
	}
	if l < 0 {
		return fmt.Errorf("invalid level %d: must not be negative", l)
	}
	*f = LevelledFlag(l)
	return nil
}

func (f *LevelledFlag) Type() string {
	return "level"
}

func (f *LevelledFlag) String() string {
	return strconv.Itoa(int(*f))
}

