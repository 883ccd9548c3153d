package utils

import (
	"strconv"
	"strings"
)

func Ptr[T any](v T) *T {
	return &v
}

// FormatNumber renders 1234567 as 1,234,567.
func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}

	var b strings.Builder
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String()
}

func UserMention(id string) string {
	return "<@" + id + ">"
}

// Truncate cuts s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
