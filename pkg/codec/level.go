package codec

import (
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"

	"tarz/pkg/errcode"
)

// Bounds of a custom compression level.
const (
	MinLevel = 0
	MaxLevel = 9
)

type levelKind uint8

const (
	levelDefault levelKind = iota // zero value is Default
	levelNone
	levelFast
	levelMaximum
	levelCustom
)

// Level selects how hard the codec works. The zero value is Default.
// Levels are one of the presets None, Fast, Default and Maximum, or a
// custom level in [MinLevel, MaxLevel] built with Custom.
type Level struct {
	kind  levelKind
	value int
}

// Preset levels.
var (
	None    = Level{kind: levelNone, value: 0}
	Fast    = Level{kind: levelFast, value: 1}
	Default = Level{kind: levelDefault, value: 6}
	Maximum = Level{kind: levelMaximum, value: 9}
)

// Custom returns an explicit numeric level. Values outside
// [MinLevel, MaxLevel] are rejected, never clamped.
func Custom(n int) (Level, error) {
	if n < MinLevel || n > MaxLevel {
		return Level{}, errors.Newf(errcode.InvalidInput,
			"compression level %d out of range [%d, %d]", n, MinLevel, MaxLevel)
	}
	return Level{kind: levelCustom, value: n}, nil
}

// Value returns the codec intensity, 0 (store) through 9 (best).
func (l Level) Value() int {
	if l.kind == levelDefault {
		return Default.value
	}
	return l.value
}

// String returns the preset name or "custom(n)".
func (l Level) String() string {
	switch l.kind {
	case levelNone:
		return "none"
	case levelFast:
		return "fast"
	case levelMaximum:
		return "max"
	case levelCustom:
		return "custom(" + strconv.Itoa(l.value) + ")"
	default:
		return "default"
	}
}

// ParseLevel parses a preset name or a number 0-9.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "store":
		return None, nil
	case "fast":
		return Fast, nil
	case "", "default":
		return Default, nil
	case "max", "maximum", "best":
		return Maximum, nil
	}

	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Level{}, errors.Wrapf(err, errcode.InvalidInput, "unknown compression level %q", s)
	}
	return Custom(n)
}
