// Package naming converts identifiers between the case conventions used by
// the generated artifacts.
//
// A "common" name is a space separated natural language phrase ("Line Item").
// From it the generator derives CONSTANT_CASE names ("LINE_ITEM") for field,
// action and page identifiers, camelCase names ("lineItem", "LineItem") for
// Java members and classes, and lower snake names for SQL tables. Every
// emitter derives names through this package only, so an identifier computed
// by one emitter is byte-identical to the one referenced by another.
//
// All functions are total: empty input yields empty output and never panics.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	underscoreRe = regexp.MustCompile(`_+`)
	camelWordRe  = regexp.MustCompile(`[A-Z][^A-Z]*`)
)

func upper(v string) string { return cases.Upper(language.Und).String(v) }

func lower(v string) string { return cases.Lower(language.Und).String(v) }

// upperFirst upper-cases the first rune of v.
func upperFirst(v string) string {
	r, size := utf8.DecodeRuneInString(v)
	if r == utf8.RuneError && size == 0 {
		return v
	}
	return string(unicode.ToUpper(r)) + v[size:]
}

// CommonToConstant converts "Line Item" to "LINE_ITEM".
func CommonToConstant(v string) string {
	return strings.ReplaceAll(upper(v), " ", "_")
}

// CommonToCamel converts "line item" to "lineItem" when lowerFirst is set
// and to "LineItem" otherwise.
func CommonToCamel(v string, lowerFirst bool) string {
	var b strings.Builder
	first := true
	for _, word := range whitespaceRe.Split(lower(v), -1) {
		if word == "" {
			continue
		}
		if first && lowerFirst {
			b.WriteString(word)
		} else {
			b.WriteString(upperFirst(word))
		}
		first = false
	}
	return b.String()
}

// UpperCamel is CommonToCamel(v, false).
func UpperCamel(v string) string { return CommonToCamel(v, false) }

// LowerCamel is CommonToCamel(v, true).
func LowerCamel(v string) string { return CommonToCamel(v, true) }

// AsSentence lower-cases v, upper-casing the first rune when upperFirst is set.
func AsSentence(v string, upperFirstRune bool) string {
	v = lower(v)
	if upperFirstRune {
		return upperFirst(v)
	}
	return v
}

// ConstantToCommon converts "LINE_ITEM" to "Line Item".
func ConstantToCommon(v string) string {
	var words []string
	for _, word := range underscoreRe.Split(lower(v), -1) {
		if word == "" {
			continue
		}
		words = append(words, upperFirst(word))
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

// CamelToCommon converts "lineItem" or "LineItem" to "Line Item".
func CamelToCommon(v string) string {
	switch utf8.RuneCountInString(v) {
	case 0:
		return ""
	case 1:
		return upper(v)
	}
	return strings.Join(camelWordRe.FindAllString(upperFirst(v), -1), " ")
}

// Plural applies the naive English suffix rules used for every plural
// identifier: f becomes ves; h, s and x take es; y becomes ies; anything else
// takes s. Blank input is returned unchanged.
func Plural(v string) string {
	if strings.TrimSpace(v) == "" {
		return v
	}
	last, size := utf8.DecodeLastRuneInString(v)
	stem := v[:len(v)-size]
	switch unicode.ToLower(last) {
	case 'f':
		return stem + "ves"
	case 'h', 's', 'x':
		return v + "es"
	case 'y':
		return stem + "ies"
	default:
		return v + "s"
	}
}

// BaseClassName returns the part of a qualified class name after the last dot.
func BaseClassName(v string) string {
	if i := strings.LastIndex(v, "."); i > 0 {
		return v[i+1:]
	}
	return v
}

// PackageName returns the part of a qualified class name before the last dot,
// or "" when v is not qualified.
func PackageName(v string) string {
	if i := strings.LastIndex(v, "."); i > 0 {
		return v[:i]
	}
	return ""
}

// Normalize title-cases every whitespace separated word of v and joins the
// words with a single space.
func Normalize(v string) string {
	var words []string
	for _, word := range whitespaceRe.Split(lower(v), -1) {
		if word != "" {
			words = append(words, upperFirst(word))
		}
	}
	return strings.Join(words, " ")
}

// EntityCommon returns the common name of an entity reference that may be a
// qualified class name ("com.acme.LineItem"), a camel case class name
// ("LineItem") or already a common name ("Line Item").
func EntityCommon(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.ContainsAny(ref, " \t") {
		return Normalize(ref)
	}
	return CamelToCommon(BaseClassName(ref))
}

// EntityConstant returns CommonToConstant(EntityCommon(ref)).
func EntityConstant(ref string) string {
	return CommonToConstant(EntityCommon(ref))
}

// ReferenceName is the normalized key of an ordered entity pair. A pair of
// entities is related when ReferenceName(a, b) or ReferenceName(b, a) is
// already registered.
func ReferenceName(a, b string) string {
	return EntityConstant(a) + "_" + EntityConstant(b)
}
