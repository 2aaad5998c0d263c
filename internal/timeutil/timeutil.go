// Package timeutil parses the installer's time limits.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseExecutionTime reads a per-pass time limit. A bare integer is a number
// of seconds, as in a max_execution_time setting. Go duration strings are
// accepted too, and "0", "-1" or "unlimited" turn the limit off (0).
func ParseExecutionTime(s string) (time.Duration, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return 0, fmt.Errorf("empty execution time")
	case "0", "-1", "unlimited":
		return 0, nil
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative execution time: %s", s)
		}
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid execution time %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative execution time: %s", s)
	}
	return d, nil
}

// Remaining formats what is left of a limit for log lines. Unlimited budgets
// report "unlimited".
func Remaining(d time.Duration) string {
	if d >= time.Duration(1<<62) {
		return "unlimited"
	}
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}
