package output

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		value   string
		want    ColorMode
		wantErr bool
	}{
		{value: "", want: ColorAuto},
		{value: "auto", want: ColorAuto},
		{value: "always", want: ColorAlways},
		{value: "never", want: ColorNever},
		{value: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := ParseColorMode(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseColorMode(%q) expected error", tt.value)
				}
				if GetExitCode(err) != ExitUserError {
					t.Errorf("exit code = %d, want %d", GetExitCode(err), ExitUserError)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColorMode(%q) error = %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ParseColorMode(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestColorMode_Enabled(t *testing.T) {
	tests := []struct {
		name  string
		mode  ColorMode
		isTTY bool
		want  bool
	}{
		{name: "never on TTY", mode: ColorNever, isTTY: true, want: false},
		{name: "always off TTY", mode: ColorAlways, isTTY: false, want: true},
		{name: "auto follows TTY", mode: ColorAuto, isTTY: true, want: true},
		{name: "auto off TTY", mode: ColorAuto, isTTY: false, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mode.Enabled(tt.isTTY); got != tt.want {
				t.Errorf("Enabled(%v) = %v, want %v", tt.isTTY, got, tt.want)
			}
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("IsTTY(buffer) should return false")
	}
}

func TestColorNever_ClearsStyles(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, ColorNever.Enabled(true))

	empty := lipgloss.NewStyle()
	if printer.styles.Error.GetForeground() != empty.GetForeground() {
		t.Error("Error style should have no foreground color when color=never")
	}

	printer.Error(NewUserError("test error"))
	if containsANSI(buf.String()) {
		t.Errorf("--color never should produce no ANSI codes, got: %q", buf.String())
	}
}

func TestColorAlways_KeepsStyles(t *testing.T) {
	var buf bytes.Buffer
	printer := NewPrinter(&buf, false, ColorAlways.Enabled(false))

	if !printer.IsTTY() {
		t.Error("printer should report TTY when color=always")
	}
	empty := lipgloss.NewStyle()
	if printer.styles.Error.GetForeground() == empty.GetForeground() {
		t.Error("Error style should have foreground color when color=always")
	}
}

// containsANSI checks if a string contains ANSI escape sequences.
func containsANSI(s string) bool {
	for i := range len(s) - 1 {
		if s[i] == '\033' && s[i+1] == '[' {
			return true
		}
	}
	return false
}
