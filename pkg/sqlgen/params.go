package sqlgen

import (
	"fmt"
	"sort"
	"strings"
)

// BoundStatement is the final executable statement: text rewritten to the
// driver's positional placeholders, plus the ordered values for exactly the
// placeholders that occur in the text.
type BoundStatement struct {
	// SQL is the statement with :name placeholders rewritten to $1, $2, ...
	// in order of first appearance. Adapters for engines with other
	// conventions convert from this form.
	SQL string

	// ParamNames lists the distinct placeholder names in positional order.
	// Attached to execution errors for diagnosis; values are not.
	ParamNames []string

	// Values holds the bound values, index-aligned with ParamNames.
	Values []any

	// Warnings records supplied parameters that were dropped because the
	// statement never references them.
	Warnings []string
}

// BindMismatchError reports placeholders with no supplied value. Guessing a
// value is never safe, so this fails the request before any connection is
// touched.
type BindMismatchError struct {
	Missing []string
}

func (e *BindMismatchError) Error() string {
	return fmt.Sprintf("statement references unbound placeholders: %s", strings.Join(e.Missing, ", "))
}

// Bind reconciles the placeholders present in sqlText with the available
// values. Placeholders missing from available produce a BindMismatchError;
// available values with no placeholder are dropped with a warning. Binding
// is a pure function: the same inputs always produce the same BoundStatement.
func Bind(sqlText string, available map[string]any) (*BoundStatement, error) {
	rewritten, names := rewritePlaceholders(sqlText)

	var missing []string
	for _, name := range names {
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &BindMismatchError{Missing: missing}
	}

	bound := &BoundStatement{
		SQL:        rewritten,
		ParamNames: names,
		Values:     make([]any, len(names)),
	}
	for i, name := range names {
		bound.Values[i] = available[name]
	}

	referenced := make(map[string]bool, len(names))
	for _, name := range names {
		referenced[name] = true
	}
	var unused []string
	for name := range available {
		if !referenced[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		bound.Warnings = append(bound.Warnings, fmt.Sprintf("parameter %q supplied but not referenced by the statement; dropped", name))
	}

	return bound, nil
}

// ExtractPlaceholders returns the distinct :name placeholders in order of
// first appearance. Quoted spans are skipped, and the double colon of a
// Postgres cast is never treated as a placeholder.
func ExtractPlaceholders(sqlText string) []string {
	_, names := rewritePlaceholders(sqlText)
	return names
}

// rewritePlaceholders walks the text once, replacing each :name outside
// string literals with the positional marker for that name. Repeated names
// share a position.
func rewritePlaceholders(sqlText string) (string, []string) {
	var out strings.Builder
	var names []string
	positions := make(map[string]int)

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)
	state := stateNormal

	runes := []rune(sqlText)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch state {
		case stateSingleQuote:
			out.WriteRune(ch)
			if ch == '\'' {
				state = stateNormal
			}
			continue
		case stateDoubleQuote:
			out.WriteRune(ch)
			if ch == '"' {
				state = stateNormal
			}
			continue
		}

		switch {
		case ch == '\'':
			state = stateSingleQuote
			out.WriteRune(ch)
		case ch == '"':
			state = stateDoubleQuote
			out.WriteRune(ch)
		case ch == ':':
			// a double colon is a cast, not a placeholder
			if i+1 < len(runes) && runes[i+1] == ':' {
				out.WriteString("::")
				i++
				continue
			}
			if i > 0 && runes[i-1] == ':' {
				out.WriteRune(ch)
				continue
			}
			start := i + 1
			end := start
			for end < len(runes) && isIdentRune(runes[end], end > start) {
				end++
			}
			if end == start || !isIdentStart(runes[start]) {
				out.WriteRune(ch)
				continue
			}
			name := string(runes[start:end])
			pos, seen := positions[name]
			if !seen {
				names = append(names, name)
				pos = len(names)
				positions[name] = pos
			}
			fmt.Fprintf(&out, "$%d", pos)
			i = end - 1
		default:
			out.WriteRune(ch)
		}
	}

	return out.String(), names
}

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentRune(r rune, notFirst bool) bool {
	if isIdentStart(r) {
		return true
	}
	return notFirst && r >= '0' && r <= '9'
}
