// Package emailhint derives a municipality name candidate from institutional
// email addresses such as sindaco@comune.barzano.lc.it.
package emailhint

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// patterns are tried in order against the lowercased address; first match wins.
// They cover comune.X., comunediX., comune-X., comune.X@ and X.gov.it.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`@comune\.([^.]+)\.`),
	regexp.MustCompile(`@comunedi([^.@]+)\.`),
	regexp.MustCompile(`@comune-([^.]+)\.`),
	regexp.MustCompile(`comune\.([^.@]+)@`),
	regexp.MustCompile(`@([^.]+)\.gov\.it`),
}

var separators = strings.NewReplacer("-", " ", "_", " ")

// Extract returns the municipality name suggested by email, with separators
// turned into spaces and each word capitalized. The second result is false
// when no institutional convention matches.
func Extract(email string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(email))
	if lower == "" {
		return "", false
	}

	for _, re := range patterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		words := strings.Fields(separators.Replace(m[1]))
		if len(words) == 0 {
			continue
		}
		caser := cases.Title(language.Italian)
		for i, w := range words {
			words[i] = caser.String(w)
		}
		return strings.Join(words, " "), true
	}
	return "", false
}
