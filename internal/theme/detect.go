package theme

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const appleStyleTimeout = 2 * time.Second

// DetectorFunc adapts a function to Detector.
type DetectorFunc func() (dark, ok bool)

// Detect implements Detector.
func (f DetectorFunc) Detect() (bool, bool) {
	return f()
}

// ChainDetector asks each detector in order and returns the first available
// answer.
type ChainDetector []Detector

// Detect implements Detector.
func (c ChainDetector) Detect() (bool, bool) {
	for _, d := range c {
		if d == nil {
			continue
		}

		if dark, ok := d.Detect(); ok {
			return dark, true
		}
	}

	return false, false
}

// EnvDetector reads the COLORFGBG variable set by rxvt-style terminals,
// e.g. "15;0" for white on black.
type EnvDetector struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Detect implements Detector.
func (d EnvDetector) Detect() (bool, bool) {
	getenv := d.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	value := strings.TrimSpace(getenv("COLORFGBG"))
	if value == "" {
		return false, false
	}

	fields := strings.Split(value, ";")

	bg, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil || bg < 0 {
		return false, false
	}

	// ANSI colors 0-6 and 8 are dark backgrounds.
	return bg <= 6 || bg == 8, true
}

// AppleInterfaceStyleDetector reads the macOS appearance setting.
type AppleInterfaceStyleDetector struct {
	// GOOS defaults to runtime.GOOS.
	GOOS string
	// Output runs "defaults read -g AppleInterfaceStyle" by default.
	Output func(ctx context.Context) ([]byte, error)
}

// Detect implements Detector.
func (d AppleInterfaceStyleDetector) Detect() (bool, bool) {
	goos := d.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}

	if goos != "darwin" {
		return false, false
	}

	output := d.Output
	if output == nil {
		output = func(ctx context.Context) ([]byte, error) {
			return exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").Output()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), appleStyleTimeout)
	defer cancel()

	out, err := output(ctx)
	if err != nil {
		// The key is absent in light mode.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, true
		}

		return false, false
	}

	return strings.TrimSpace(string(out)) == "Dark", true
}

// TerminalDetector asks the terminal for its background color. It is only
// available when File is a terminal.
type TerminalDetector struct {
	File *os.File
}

// Detect implements Detector.
func (d TerminalDetector) Detect() (bool, bool) {
	if d.File == nil || !term.IsTerminal(int(d.File.Fd())) { //nolint:gosec // fd fits in int
		return false, false
	}

	return lipgloss.NewRenderer(d.File).HasDarkBackground(), true
}

// DefaultDetector consults COLORFGBG, then the macOS appearance, then the
// terminal attached to out.
func DefaultDetector(out *os.File) Detector {
	return ChainDetector{
		EnvDetector{},
		AppleInterfaceStyleDetector{},
		TerminalDetector{File: out},
	}
}
