package util

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count for humans (e.g. "500 MB")
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatCount renders a row count with thousands separators (e.g. "106,574")
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatPercent renders a percentage with one decimal place
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
