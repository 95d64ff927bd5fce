package util

import "strings"

const sep = "::"

var escaper = strings.NewReplacer("%", "%25", ":", "%3A")

// JoinKey flattens ordered key tokens into one deterministic storage key.
// Separator characters inside tokens are escaped so distinct token
// sequences can never collide on the joined form.
func JoinKey(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	if len(tokens) == 1 {
		return escaper.Replace(tokens[0])
	}
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = escaper.Replace(t)
	}
	return strings.Join(parts, sep)
}
