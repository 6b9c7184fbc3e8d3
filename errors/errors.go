package errors

import (
	// Go Internal Packages
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an error so callers can branch on it without string matching.
type Kind uint8

const (
	Other       Kind = iota // Unclassified error
	Invalid                 // Invalid input or configuration
	NotFound                // Entity does not exist
	Conflict                // Natural key already taken
	Unavailable             // External source or dependency cannot be reached
	Internal                // Store or programming failure
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case Unavailable:
		return "unavailable"
	case Internal:
		return "internal"
	}
	return "other"
}

// Error is the error type used across the ledger.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// E builds an *Error of the given kind wrapping err (which may be nil).
func E(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if e.Err != nil {
		if b.Len() > 0 {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether any *Error in err's chain has the given kind.
func Is(kind Kind, err error) bool {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}

// ValidationErrors collects per-field problems and reports them together.
type ValidationErrors struct {
	fields map[string][]string
}

// ValidationErrs returns an empty collector.
func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{fields: make(map[string][]string)}
}

// Add records a problem for field.
func (v *ValidationErrors) Add(field, msg string) {
	v.fields[field] = append(v.fields[field], msg)
}

// Len returns the number of fields with problems.
func (v *ValidationErrors) Len() int { return len(v.fields) }

// Err returns nil when nothing was added, otherwise an Invalid error listing
// every field in a stable order.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, strings.Join(v.fields[k], ", ")))
	}
	return E(Invalid, strings.Join(parts, "; "), nil)
}
