// Package template expands ${var} and $var placeholders in prompt strings.
// Step prompts are defined once with placeholders and filled from workflow
// state at generation time.
package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${varname}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $varname up to a word boundary, so $id does
	// not match inside $identifier.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// MissingAction controls what happens when a placeholder has no value.
type MissingAction int

const (
	// MissingKeep leaves unresolved placeholders in place (default).
	MissingKeep MissingAction = iota

	// MissingEmpty replaces unresolved placeholders with "".
	MissingEmpty

	// MissingError fails Expand with an UndefinedVariableError.
	MissingError
)

// UndefinedVariableError lists placeholders with no value.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined template variables: %s", strings.Join(e.Names, ", "))
}

// Expander expands placeholder patterns. Safe for concurrent use after
// construction.
type Expander struct {
	missing MissingAction
}

// Option configures an Expander.
type Option func(*Expander)

// WithMissingAction sets the behavior for unresolved placeholders.
func WithMissingAction(a MissingAction) Option {
	return func(e *Expander) { e.missing = a }
}

// NewExpander creates an Expander. Defaults: MissingKeep.
func NewExpander(opts ...Option) *Expander {
	e := &Expander{missing: MissingKeep}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand replaces placeholders in s with values from vars. Both ${var} and
// $var styles are recognized; the brace form is resolved first.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	replace := func(name, original string) string {
		if val, ok := vars[name]; ok {
			return fmt.Sprintf("%v", val)
		}
		switch e.missing {
		case MissingEmpty:
			return ""
		case MissingError:
			missing = append(missing, name)
			return original
		default:
			return original
		}
	}

	result := bracePattern.ReplaceAllStringFunc(s, func(match string) string {
		return replace(match[2:len(match)-1], match)
	})
	result = dollarPattern.ReplaceAllStringFunc(result, func(match string) string {
		return replace(match[1:], match)
	})

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// Expand is a convenience wrapper using the default Expander.
func Expand(s string, vars map[string]any) string {
	out, _ := NewExpander().Expand(s, vars)
	return out
}
