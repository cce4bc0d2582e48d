package store

import (
	"fmt"
	"strings"
	"time"
)

// Deadline layouts accepted on the command line, tried in order.
var deadlineLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline parses a deadline string in the given location. Date-only
// deadlines resolve to midnight in that location.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized deadline %q (want 2006-01-02, 2006-01-02 15:04 or RFC3339)", s)
}
