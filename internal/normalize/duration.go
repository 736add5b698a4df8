// Package normalize converts heterogeneous raw recipe fields into canonical
// forms. Every function here is pure: no I/O, no clock, no logging.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
)

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// Duration renders the restricted ISO-8601 shape "PT[n]H[n]M" as
// "Xh Ym", "Xh", or "Ym". Empty input stays empty and any other non-empty
// input passes through unchanged, so the function is idempotent on its own
// output.
func Duration(raw string) string {
	if raw == "" {
		return ""
	}
	m := isoDurationRe.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return raw
	}
}
