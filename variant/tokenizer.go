package variant

import (
	"strings"

	"github.com/teranos/KVAR/errors"
)

// The rule language allows single quotes, double quotes, backslash escapes
// and one level of parenthesized grouping. The three primitives below are
// the only place that syntax is interpreted; every higher parser builds on
// them and propagates their failures verbatim.

// SplitRaw splits text on sep, honoring quoting, escaping and parenthesis
// depth: a separator inside quotes or inside parentheses is not a split
// point. Escapes and quotes are preserved in the output items (use Cook to
// strip them). With collapse set, empty items from consecutive separators
// are dropped.
func SplitRaw(text string, sep rune, collapse bool) ([]string, error) {
	var result []string
	var item []rune
	escaped := false
	quotedS := false
	quotedD := false
	parens := 0
	for _, c := range text {
		switch {
		case escaped:
			escaped = false
			item = append(item, c)
		case c == '\\':
			escaped = true
			item = append(item, c)
		case c == '\'' && !quotedD:
			quotedS = !quotedS
			item = append(item, c)
		case c == '"' && !quotedS:
			quotedD = !quotedD
			item = append(item, c)
		case c == '(' && !quotedS && !quotedD:
			parens++
			item = append(item, c)
		case c == ')' && !quotedS && !quotedD:
			if parens == 0 {
				return nil, errors.New("unmatched closing parenthesis")
			}
			parens--
			item = append(item, c)
		case c == sep && !quotedS && !quotedD && parens == 0:
			if !collapse || len(item) > 0 {
				result = append(result, string(item))
				item = nil
			}
		default:
			item = append(item, c)
		}
	}
	if err := unbalanced(parens > 0, escaped, quotedS, quotedD); err != nil {
		return nil, err
	}
	if !collapse || len(item) > 0 {
		result = append(result, string(item))
	}
	return result, nil
}

// SplitParens splits text into the part outside the first top-level
// parenthesized group and the group's content. A nil inside means no group
// is present, distinct from an empty group "". Content following the
// closing parenthesis is an error.
func SplitParens(text string) (outside string, inside *string, err error) {
	var item []rune
	escaped := false
	quotedS := false
	quotedD := false
	parens := 0
	endExpected := false
	for _, c := range text {
		switch {
		case endExpected:
			return "", nil, errors.New("string extends beyond closing parenthesis")
		case escaped:
			escaped = false
			item = append(item, c)
		case c == '\\':
			escaped = true
			item = append(item, c)
		case c == '\'' && !quotedD:
			quotedS = !quotedS
			item = append(item, c)
		case c == '"' && !quotedS:
			quotedD = !quotedD
			item = append(item, c)
		case c == '(' && !quotedS && !quotedD:
			parens++
			if parens == 1 {
				outside = string(item)
				empty := ""
				inside = &empty
				item = nil
			} else {
				item = append(item, c)
			}
		case c == ')' && !quotedS && !quotedD:
			if parens == 0 {
				return "", nil, errors.New("unmatched closing parenthesis")
			}
			parens--
			if parens == 0 {
				content := string(item)
				inside = &content
				item = nil
				endExpected = true
			} else {
				item = append(item, c)
			}
		default:
			item = append(item, c)
		}
	}
	if err := unbalanced(parens > 0, escaped, quotedS, quotedD); err != nil {
		return "", nil, err
	}
	if len(item) > 0 {
		outside = string(item)
	}
	return outside, inside, nil
}

// Cook removes one level of escaping and quoting, producing the literal
// value of a raw token.
func Cook(text string) (string, error) {
	var result []rune
	escaped := false
	quotedS := false
	quotedD := false
	for _, c := range text {
		switch {
		case escaped:
			result = append(result, c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == '\'' && !quotedD:
			quotedS = !quotedS
		case c == '"' && !quotedS:
			quotedD = !quotedD
		default:
			result = append(result, c)
		}
	}
	if err := unbalanced(false, escaped, quotedS, quotedD); err != nil {
		return "", err
	}
	return string(result), nil
}

func unbalanced(parens, escaped, quotedS, quotedD bool) error {
	switch {
	case parens:
		return errors.New("unmatched opening parenthesis")
	case escaped:
		return errors.New(`unterminated escape sequence (\) at end of string`)
	case quotedS:
		return errors.New("unmatched single-quote (') character in string")
	case quotedD:
		return errors.New(`unmatched double-quote (") character in string`)
	}
	return nil
}

// Escape backslash-escapes quotes and backslashes, the inverse of Cook for
// unquoted text. Used when echoing user-provided names in messages.
func Escape(text string) string {
	var b strings.Builder
	for _, c := range text {
		if c == '\\' || c == '\'' || c == '"' {
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// quoteTrigger holds the characters that force quoting in Quote.
const quoteTrigger = `, -~\[]()="'`

// Quote renders text as a rule-language token that cooks back to the same
// literal. Single quotes are preferred; the quote character occurring less
// often in the text wins.
func Quote(text string) string {
	if text == "" {
		return "''"
	}
	if !strings.ContainsAny(text, quoteTrigger) {
		return text
	}
	q := '\''
	if strings.Count(text, "'") > strings.Count(text, `"`) {
		q = '"'
	}
	var b strings.Builder
	b.WriteRune(q)
	for _, c := range text {
		if c == '\\' || c == q {
			b.WriteRune('\\')
		}
		b.WriteRune(c)
	}
	b.WriteRune(q)
	return b.String()
}
