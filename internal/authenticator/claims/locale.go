package claims

import (
	"strings"

	pstrings "github.com/akilalakshman/esignet/pkg/string"
)

// NormalizeLocales reduces requested locale tags to their two-letter primary
// code, keeping first-seen order. Blank tags and tags shorter than two
// characters are dropped. Case is preserved.
func NormalizeLocales(locales []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range pstrings.DedupeAndTrim(locales) {
		if len(l) < 2 {
			continue
		}
		code := l[:2]
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// languageIndex maps the two-letter prefix of each tagged value to its full
// stored tag. The last tag with a given prefix wins.
func languageIndex(vals []LangValue) map[string]string {
	idx := make(map[string]string, len(vals))
	for _, v := range vals {
		if len(v.Language) < 2 {
			continue
		}
		idx[v.Language[:2]] = v.Language
	}
	return idx
}

// valuesInLanguage returns the values whose tag equals tag, ignoring case.
func valuesInLanguage(vals []LangValue, tag string) []string {
	var out []string
	for _, v := range vals {
		if strings.EqualFold(v.Language, tag) {
			out = append(out, v.Value)
		}
	}
	return out
}
