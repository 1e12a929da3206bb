package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Wait details are human-authored free text like "10 minutes" or "2 days".
// The recognized unit vocabulary is fixed; it matches existing stored
// workflow data and must not shrink.
var waitDurationPattern = regexp.MustCompile(`(?i)(\d+)\s*(minutes?|mins?|hours?|hrs?|days?|weeks?)`)

// ParseWaitDuration extracts a duration from a wait action's rendered
// details. Text that matches nothing parses to zero, which the engine treats
// as a no-op wait rather than an error.
func ParseWaitDuration(details string) time.Duration {
	match := waitDurationPattern.FindStringSubmatch(details)
	if match == nil {
		return 0
	}

	amount, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}

	unit := strings.ToLower(match[2])

	switch {
	case strings.HasPrefix(unit, "min"):
		return time.Duration(amount) * time.Minute
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
		return time.Duration(amount) * time.Hour
	case strings.HasPrefix(unit, "day"):
		return time.Duration(amount) * 24 * time.Hour
	case strings.HasPrefix(unit, "week"):
		return time.Duration(amount) * 7 * 24 * time.Hour
	default:
		return 0
	}
}
