package sqlgen

import (
	"regexp"
	"strings"
)

var (
	// ```sql ... ``` fences that chat models like to wrap statements in
	codeFencePattern = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)```")

	// date literals hard-coded where a placeholder was expected:
	// 'YYYY-MM-DD' with an optional DATE / TIMESTAMP keyword prefix
	dateLiteral = `(?:DATE\s+|TIMESTAMP\s+)?'\d{4}-\d{2}-\d{2}(?:[ T]\d{2}:\d{2}:\d{2})?'`

	// col BETWEEN '2024-01-01' AND '2024-03-31'
	betweenDates = regexp.MustCompile(`(?i)(BETWEEN)\s+` + dateLiteral + `\s+(AND)\s+` + dateLiteral)

	// col >= '2024-01-01' / col > ... and col <= ... / col < ...
	lowerBoundDate = regexp.MustCompile(`(?i)(>=|>)\s*` + dateLiteral)
	upperBoundDate = regexp.MustCompile(`(?i)(<=|<)\s*` + dateLiteral)
)

// Sanitize normalizes raw candidate text from the producer: it unwraps code
// fences, drops comments and trailing semicolons, collapses whitespace, and
// replaces hard-coded date literals with the :from_date/:to_date placeholders
// the binder expects. It never fails; structural problems are left for the
// validator to catch.
func Sanitize(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return text
	}

	if m := codeFencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	text = stripComments(text)

	text = replaceDateLiterals(text)

	// Strip trailing semicolons. Interior semicolons are a structural
	// problem and stay for the validator.
	text = strings.TrimRight(text, " \t\n\r")
	for strings.HasSuffix(text, ";") {
		text = strings.TrimRight(strings.TrimSuffix(text, ";"), " \t\n\r")
	}

	return strings.Join(strings.Fields(text), " ")
}

// stripComments removes -- line comments and /* */ block comments. Quoted
// spans are copied through untouched, so comment markers inside string
// literals survive ('x--y' stays 'x--y'). Doubled quotes inside single-quoted
// literals stay inside the span.
func stripComments(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); i++ {
		switch ch := runes[i]; ch {
		case '\'':
			b.WriteRune(ch)
			for i++; i < len(runes); i++ {
				b.WriteRune(runes[i])
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						i++
						b.WriteRune(runes[i])
						continue
					}
					break
				}
			}
		case '"':
			b.WriteRune(ch)
			for i++; i < len(runes); i++ {
				b.WriteRune(runes[i])
				if runes[i] == '"' {
					break
				}
			}
		case '-':
			if i+1 < len(runes) && runes[i+1] == '-' {
				for i += 2; i < len(runes) && runes[i] != '\n'; i++ {
				}
				if i < len(runes) {
					b.WriteRune('\n')
				}
				continue
			}
			b.WriteRune(ch)
		case '/':
			if i+1 < len(runes) && runes[i+1] == '*' {
				for i += 2; i < len(runes); i++ {
					if runes[i] == '*' && i+1 < len(runes) && runes[i+1] == '/' {
						i++
						break
					}
				}
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(ch)
		default:
			b.WriteRune(ch)
		}
	}

	return b.String()
}

// replaceDateLiterals swaps hard-coded date literals in range predicates for
// the canonical named placeholders.
func replaceDateLiterals(text string) string {
	text = betweenDates.ReplaceAllString(text, "$1 :from_date $2 :to_date")
	text = lowerBoundDate.ReplaceAllString(text, "$1 :from_date")
	text = upperBoundDate.ReplaceAllString(text, "$1 :to_date")
	return text
}
