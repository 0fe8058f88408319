package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Window fixed-width, epoch-aligned reporting window.
type Window struct {
	// Name label used in output file names, e.g. "1h".
	Name string
	// Length window width in seconds.
	Length int64
}

// NewWindow returns a validated Window.
// The name becomes part of an output file name, so it must not contain path separators.
func NewWindow(name string, length int64) (Window, error) {
	if name == "" {
		return Window{}, errors.Wrap(ErrInvalidWindow, "empty name")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "%q: name must be a plain file name component", name)
	}
	if length <= 0 {
		return Window{}, errors.Wrapf(ErrInvalidWindow, "%s: length must be positive, got %d", name, length)
	}

	return Window{Name: name, Length: length}, nil
}

// BucketStart returns the epoch second at which the bucket containing at begins.
// Uses floor division so instants before the epoch fall into the bucket that contains them.
func (w Window) BucketStart(at time.Time) int64 {
	ts := at.Unix()
	start := ts / w.Length * w.Length
	if ts < 0 && start != ts {
		start -= w.Length
	}
	return start
}

// Duration returns the window length as time.Duration.
func (w Window) Duration() time.Duration {
	return time.Duration(w.Length) * time.Second
}

// String returns the string representation.
func (w Window) String() string {
	return fmt.Sprintf("%s(%ds)", w.Name, w.Length)
}

// Windows ordered set of windows, shortest first.
type Windows []Window

// DefaultWindowLengths 1h, 1d and 30d windows.
func DefaultWindowLengths() map[string]int64 {
	return map[string]int64{
		"1h":  3600,
		"1d":  86400,
		"30d": 2592000,
	}
}

// NewWindows builds Windows from a name to seconds mapping.
// The result is ordered by length, then by name, so iteration is deterministic.
func NewWindows(lengths map[string]int64) (Windows, error) {
	if len(lengths) == 0 {
		return nil, errors.Wrap(ErrInvalidWindow, "no windows configured")
	}

	windows := make(Windows, 0, len(lengths))
	for name, length := range lengths {
		w, err := NewWindow(name, length)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Length != windows[j].Length {
			return windows[i].Length < windows[j].Length
		}
		return windows[i].Name < windows[j].Name
	})

	return windows, nil
}

// DefaultWindows returns the 1h, 1d and 30d windows.
func DefaultWindows() Windows {
	windows, _ := NewWindows(DefaultWindowLengths())
	return windows
}

// Names returns window names in order.
func (ws Windows) Names() []string {
	names := make([]string, 0, len(ws))
	for _, w := range ws {
		names = append(names, w.Name)
	}
	return names
}
