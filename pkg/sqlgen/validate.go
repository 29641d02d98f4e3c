package sqlgen

import (
	"regexp"
	"strings"
)

// Verdict classifies a candidate statement. Malformed text can never be
// executed; unsupported constructs are structurally fine but outside what
// the engine currently trusts, so they take the fallback path too.
type Verdict int

const (
	VerdictAccepted Verdict = iota
	VerdictRejectedMalformed
	VerdictRejectedUnsupportedConstruct
)

// String returns the verdict name for logs.
func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictRejectedMalformed:
		return "rejected_malformed"
	case VerdictRejectedUnsupportedConstruct:
		return "rejected_unsupported_construct"
	default:
		return "unknown"
	}
}

// OK reports whether the statement may be executed.
func (v Verdict) OK() bool {
	return v == VerdictAccepted
}

// ValidationResult is the verdict with a human-readable reason on rejection.
type ValidationResult struct {
	Verdict Verdict
	Reason  string
}

var (
	selectKeyword = regexp.MustCompile(`(?i)\bSELECT\b`)
	fromKeyword   = regexp.MustCompile(`(?i)\bFROM\b`)

	// an opening parenthesis immediately followed by SELECT marks a
	// subquery, the dominant source of truncated producer output
	parenSelect = regexp.MustCompile(`(?i)\(\s*SELECT\b`)
)

// Validate runs the cheap structural checks on sanitized candidate text.
// These are deliberately not a SQL parser: the only question answered here is
// whether the text can be trusted enough to hand to the database. String
// literals are masked first so parentheses inside quoted values cannot skew
// the balance check.
func Validate(sqlText string) ValidationResult {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return ValidationResult{VerdictRejectedMalformed, "empty statement"}
	}

	masked := maskStringLiterals(trimmed)

	if reason := checkParenBalance(masked); reason != "" {
		return ValidationResult{VerdictRejectedMalformed, reason}
	}

	if !selectKeyword.MatchString(masked) {
		return ValidationResult{VerdictRejectedMalformed, "missing SELECT keyword"}
	}
	if !fromKeyword.MatchString(masked) {
		return ValidationResult{VerdictRejectedMalformed, "missing FROM keyword"}
	}

	if strings.Contains(masked, ";") {
		return ValidationResult{VerdictRejectedMalformed, "multiple statements not allowed"}
	}

	if parenSelect.MatchString(masked) {
		return ValidationResult{VerdictRejectedUnsupportedConstruct, "subqueries are not supported"}
	}

	return ValidationResult{Verdict: VerdictAccepted}
}

// checkParenBalance scans left to right; the open-paren counter must never
// go negative and must end at zero. This catches the exact class the engine
// reports as a missing-right-parenthesis error, before it reaches the engine.
func checkParenBalance(masked string) string {
	depth := 0
	for _, ch := range masked {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return "unmatched closing parenthesis"
			}
		}
	}
	if depth != 0 {
		return "unbalanced parentheses"
	}
	return ""
}

// maskStringLiterals replaces the contents of quoted spans with underscores
// of equal length, so later checks never see literal text. Doubled quotes
// inside single-quoted literals ('O''Brien') stay inside the span.
func maskStringLiterals(sqlText string) string {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	out := []rune(sqlText)
	state := stateNormal

	for i := 0; i < len(out); i++ {
		ch := out[i]
		switch state {
		case stateNormal:
			switch ch {
			case '\'':
				state = stateSingleQuote
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if ch == '\'' {
				// doubled quote is an escaped quote, stay in the literal
				if i+1 < len(out) && out[i+1] == '\'' {
					out[i] = '_'
					out[i+1] = '_'
					i++
					continue
				}
				state = stateNormal
				continue
			}
			out[i] = '_'
		case stateDoubleQuote:
			if ch == '"' {
				state = stateNormal
				continue
			}
			out[i] = '_'
		}
	}

	return string(out)
}
