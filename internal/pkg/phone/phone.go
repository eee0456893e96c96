// Package phone canonicalizes phone numbers and emails into the single
// lookup key the rest of the engine operates on.
package phone

import "strings"

const countryPrefix = "+251"

// Normalize rewrites Ethiopian national phone formats into international
// form and lowercases emails. It is pure, deterministic and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
//
// Accepted phone shapes (all yield +251XXXXXXXXX):
//
//	0911223344   leading-zero national form (09/07)
//	911223344    bare subscriber form (9/7-leading)
//	251911223344 international without plus
//	+251911223344
func Normalize(raw string) string {
	if strings.Contains(raw, "@") {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	switch {
	case strings.HasPrefix(cleaned, "09"), strings.HasPrefix(cleaned, "07"):
		return countryPrefix + cleaned[1:]
	case strings.HasPrefix(cleaned, "9"), strings.HasPrefix(cleaned, "7"):
		return countryPrefix + cleaned
	case strings.HasPrefix(cleaned, "251"):
		return "+" + cleaned
	}
	return cleaned
}

// IsEmail reports whether the raw identifier is email-shaped.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
