package rails

import (
	"strings"
	"unicode"
)

// Small irregular-noun map. Outside these words the suffix rules below are
// heuristics and singularize/pluralize are not guaranteed to be inverses.
var irregularPlurals = map[string]string{
	"person": "people",
	"man":    "men",
	"woman":  "women",
	"child":  "children",
	"foot":   "feet",
	"tooth":  "teeth",
	"mouse":  "mice",
	"goose":  "geese",
}

var irregularSingulars = func() map[string]string {
	m := make(map[string]string, len(irregularPlurals))
	for s, p := range irregularPlurals {
		m[p] = s
	}
	return m
}()

// Pluralize applies simple suffix rules with a small irregular map.
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	if p, ok := irregularPlurals[word]; ok {
		return p
	}
	switch {
	case strings.HasSuffix(word, "y") && !hasVowelBefore(word, "y"):
		return strings.TrimSuffix(word, "y") + "ies"
	case strings.HasSuffix(word, "s"), strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"), strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"
	default:
		return word + "s"
	}
}

// Singularize reverses the common plural suffixes.
func Singularize(word string) string {
	if word == "" {
		return word
	}
	if s, ok := irregularSingulars[word]; ok {
		return s
	}
	switch {
	case strings.HasSuffix(word, "ies"):
		return strings.TrimSuffix(word, "ies") + "y"
	case strings.HasSuffix(word, "ches"), strings.HasSuffix(word, "shes"),
		strings.HasSuffix(word, "xes"), strings.HasSuffix(word, "zes"),
		strings.HasSuffix(word, "ses"):
		return strings.TrimSuffix(word, "es")
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return strings.TrimSuffix(word, "s")
	default:
		return word
	}
}

// CamelToSnake converts CamelCase (and namespaced Camel::Case) to snake_case.
func CamelToSnake(name string) string {
	name = strings.ReplaceAll(name, "::", "/")
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 && name[i-1] != '/' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SnakeToCamel converts snake_case (and slashed paths) to CamelCase.
func SnakeToCamel(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch r {
		case '_':
			upper = true
		case '/':
			b.WriteString("::")
			upper = true
		default:
			if upper {
				b.WriteRune(unicode.ToUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// IsCapitalized reports whether a token starts with an uppercase letter, the
// Ruby convention marking constants and class names.
func IsCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// TableName maps a model class name to its conventional table name.
func TableName(model string) string {
	parts := strings.Split(model, "::")
	return Pluralize(CamelToSnake(parts[len(parts)-1]))
}

func hasVowelBefore(word, suffix string) bool {
	idx := len(word) - len(suffix) - 1
	if idx < 0 {
		return false
	}
	return strings.ContainsRune("aeiou", rune(word[idx]))
}
