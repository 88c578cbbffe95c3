package generator

import (
	"regexp"
	"strings"
)

// Keys of the comment tags consumed by Field.
const (
	TagShort       = "short"
	TagLong        = "long"
	TagDescription = "description"
	TagRequired    = "required"
)

var (
	tagRx      = regexp.MustCompile(`^([A-Za-z_]+):"(.*)"$`)
	tagOpenRx  = regexp.MustCompile(`^[A-Za-z_]+:"`)
	tagCloseRx = regexp.MustCompile(`"$`)
)

// ParseTags parses a comment like `long:"integer" short:"I" description:"An Integer"`.
// Tokens are separated by single spaces and must read key:"value"; anything
// else is skipped. A quoted value may contain spaces: a token opening a quote
// it does not close is joined with the following tokens up to the one ending
// with a quote, unless another key:" starts first. The result is never nil. When a key repeats, the last value
// wins.
func ParseTags(comment string) map[string]string {
	tags := make(map[string]string)
	if comment == "" {
		return tags
	}

	for _, token := range tagTokens(comment) {
		m := tagRx.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		tags[m[1]] = m[2]
	}
	return tags
}

func tagTokens(comment string) []string {
	parts := strings.Split(comment, " ")
	tokens := make([]string, 0, len(parts))
	for i := 0; i < len(parts); i++ {
		p := parts[i]
		if !opensValue(p) {
			tokens = append(tokens, p)
			continue
		}
		if j, ok := closingPart(parts, i); ok {
			tokens = append(tokens, strings.Join(parts[i:j+1], " "))
			i = j
			continue
		}
		// Unterminated: the following parts are tokens of their own.
		tokens = append(tokens, p)
	}
	return tokens
}

// closingPart returns the index of the part closing the value opened by
// parts[i]. A part starting another key:" ends the search.
func closingPart(parts []string, i int) (int, bool) {
	for j := i + 1; j < len(parts); j++ {
		if tagOpenRx.MatchString(parts[j]) {
			return 0, false
		}
		if tagCloseRx.MatchString(parts[j]) {
			return j, true
		}
	}
	return 0, false
}

// opensValue reports whether p starts a key:"value" pair without closing it.
func opensValue(p string) bool {
	loc := tagOpenRx.FindStringIndex(p)
	if loc == nil {
		return false
	}
	return !tagCloseRx.MatchString(p[loc[1]:])
}

// FieldFromTags builds a Field with the documented defaults: no short flag,
// empty long name and description, not required.
func FieldFromTags(name, typ string, tags map[string]string) Field {
	f := Field{
		Name: name,
		Type: typ,
		Tags: tags,
	}
	for key, val := range tags {
		switch key {
		case TagShort:
			f.Short = val
		case TagLong:
			f.Long = val
		case TagDescription:
			f.Description = val
		case TagRequired:
			f.Required = val == "true"
		}
	}
	return f
}
