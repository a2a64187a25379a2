package transcript

import "strings"

// Canonicalize drops boolean flags and flag+value pairs from a whitespace
// separated argument string and rejoins the rest with single spaces.
// A valued flag with nothing after it is kept.
func Canonicalize(args string, booleanFlags, valuedFlags []string) string {
	tokens := strings.Fields(args)
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		tok := tokens[i]
		switch {
		case contains(booleanFlags, tok):
			i++
		case contains(valuedFlags, tok) && i+1 < len(tokens):
			i += 2
		default:
			out = append(out, tok)
			i++
		}
	}
	return strings.Join(out, " ")
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
