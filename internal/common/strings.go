package common

// Truncate returns at most n runes of s. Cutting on a rune boundary keeps
// truncated text valid UTF-8.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
