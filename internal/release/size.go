package release

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var sizePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*([gm])i?b`)

// ParseSize returns the size in MB-equivalent units (GB * 1024), or 0 when s
// carries no recognizable size. Binary suffixes ("1.4 GiB") read the same way,
// so labels written by FormatSize parse back in the same base.
func ParseSize(s string) float64 {
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0
	}
	if strings.EqualFold(m[2], "g") {
		return value * 1024
	}
	return value
}

// FormatSize writes a byte count as a binary-unit label that ParseSize reads
// back in MB-equivalent units.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	return humanize.IBytes(uint64(bytes))
}
