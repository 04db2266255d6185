package claims

import "strings"

// AttributeKey is a raw identity key split into its attribute name and the
// language embedded in its suffix, e.g. "name_eng" -> {name, eng}.
type AttributeKey struct {
	Name     string
	Language string
}

// ParseAttributeKey splits raw on the last occurrence of sep. A key the
// schema already knows is never split, and the suffix only counts as a
// language when it is two or three ASCII letters; otherwise the whole key is
// the name ("date_of_birth" stays intact).
func ParseAttributeKey(schema SchemaLookup, raw, sep string) AttributeKey {
	if sep == "" || schema == nil {
		return AttributeKey{Name: raw}
	}
	if _, err := schema.AttributesFor(raw); err == nil {
		return AttributeKey{Name: raw}
	}
	idx := strings.LastIndex(raw, sep)
	if idx <= 0 {
		return AttributeKey{Name: raw}
	}
	lang := raw[idx+len(sep):]
	if !isLanguageTag(lang) {
		return AttributeKey{Name: raw}
	}
	return AttributeKey{Name: raw[:idx], Language: lang}
}

func isLanguageTag(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
