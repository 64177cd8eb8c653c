package debounce

import "strings"

// InputKind says how a raw keystroke value should be stabilized.
type InputKind int

const (
	// InputText is free text, emitted after the default delay.
	InputText InputKind = iota
	// InputClear is empty or whitespace-only input, emitted at once.
	InputClear
	// InputPartialFilter is a column filter that has not reached its
	// separator yet. It is never emitted.
	InputPartialFilter
	// InputColumnFilter is a column filter with its separator, emitted
	// after the shorter delay.
	InputColumnFilter
)

func (k InputKind) String() string {
	switch k {
	case InputClear:
		return "clear"
	case InputPartialFilter:
		return "partial_filter"
	case InputColumnFilter:
		return "column_filter"
	default:
		return "text"
	}
}

// Classify inspects raw input for the trigger/separator pair that starts a
// column filter such as "#name:contains:para".
func Classify(raw string, trigger rune, separator rune) InputKind {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return InputClear
	}

	rest, ok := strings.CutPrefix(trimmed, string(trigger))
	if !ok {
		return InputText
	}
	if strings.ContainsRune(rest, separator) {
		return InputColumnFilter
	}

	return InputPartialFilter
}

// IsColumnFilter reports whether query uses the default column filter syntax,
// complete or not.
func IsColumnFilter(query string) bool {
	switch Classify(query, DefaultTrigger, DefaultSeparator) {
	case InputPartialFilter, InputColumnFilter:
		return true
	}
	return false
}
