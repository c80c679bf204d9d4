package output

import (
	"fmt"
	"io"
	"os"
)

// ColorMode is the value of the --color flag.
type ColorMode string

// Supported color modes.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value. An empty string means auto.
func ParseColorMode(value string) (ColorMode, error) {
	switch ColorMode(value) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(value), nil
	default:
		return "", NewUserError(fmt.Sprintf("invalid --color value %q (want auto, always or never)", value))
	}
}

// Enabled reports whether styling should be applied given the detected TTY state.
func (m ColorMode) Enabled(isTTY bool) bool {
	switch m {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY
	}
}

// IsTTY checks if a writer is a terminal.
// Returns true only for an *os.File backed by a character device.
func IsTTY(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
