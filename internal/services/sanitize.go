package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SanitizeScreenName replaces every rune outside [A-Za-z0-9] with '_'.
func SanitizeScreenName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

// RunObjectNames sanitizes each screen name for use in run object paths.
// A name that repeats within the batch gets a _2, _3, ... suffix so its
// actual and diff objects do not replace an earlier screenshot's.
func RunObjectNames(screenNames []string) []string {
	out := make([]string, len(screenNames))
	used := make(map[string]bool, len(screenNames))
	for i, name := range screenNames {
		safe := SanitizeScreenName(name)
		candidate := safe
		for n := 2; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", safe, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// BatchTimestamp renders t as UTC ISO-8601 with ':' and '.' made path safe,
// e.g. 2024-03-01T10-15-30-123Z.
func BatchTimestamp(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(s)
}

func ActualImagePath(appID, runID uuid.UUID, safeScreen, ts string) string {
	return fmt.Sprintf("%s/%s/%s_actual_%s.png", appID, runID, safeScreen, ts)
}

func DiffImagePath(appID, runID uuid.UUID, safeScreen, ts string) string {
	return fmt.Sprintf("%s/%s/%s_diff_%s.png", appID, runID, safeScreen, ts)
}

// BaselineImagePath has no run or timestamp component; a new baseline upload
// for the same screen replaces the previous object.
func BaselineImagePath(appID uuid.UUID, safeScreen string) string {
	return fmt.Sprintf("%s/baselines/%s_baseline.png", appID, safeScreen)
}
