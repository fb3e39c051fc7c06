package extract

import "strings"

const fence = "```"

// StripFences removes a leading code-fence line (with or without a language
// tag) and a trailing fence, then trims whitespace. Text without a leading
// fence is only trimmed.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = s[len(fence):]
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		// Single-line block such as ```json{...}```: drop the tag only.
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-+")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}
