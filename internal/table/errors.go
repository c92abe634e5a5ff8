package table

import (
	"errors"
	"fmt"

	"mapping-resolver/internal/match"
	"mapping-resolver/internal/naming"
)

// ErrBuilt is returned when a builder is used after Build.
var ErrBuilt = errors.New("table builder already built")

// ConflictingMappingError reports two different claims on one table cell.
type ConflictingMappingError struct {
	Source    string
	Element   string
	Namespace naming.Namespace
	Existing  string
	Incoming  string
}

func (e *ConflictingMappingError) Error() string {
	msg := fmt.Sprintf("conflicting mapping for %s in namespace %q: %q already mapped, got %q",
		e.Element, e.Namespace, e.Existing, e.Incoming)
	if e.Source != "" {
		msg += " (from " + e.Source + ")"
	}

	return msg
}

// MalformedTableError reports a table text that cannot be read.
type MalformedTableError struct {
	Line   int
	Reason string
}

func (e *MalformedTableError) Error() string {
	return fmt.Sprintf("malformed table at line %d: %s", e.Line, e.Reason)
}

// UnknownNamespaceError reports a namespace the table does not carry.
type UnknownNamespaceError struct {
	Namespace  naming.Namespace
	Known      naming.Namespaces
	Suggestion naming.Namespace
}

// NewUnknownNamespaceError reports ns as unknown, suggesting the closest
// known namespace when one is similar enough.
func NewUnknownNamespaceError(ns naming.Namespace, known naming.Namespaces) *UnknownNamespaceError {
	err := &UnknownNamespaceError{Namespace: ns, Known: known}
	if s, ok := match.Suggest(string(ns), known.Strings()); ok {
		err.Suggestion = naming.Namespace(s)
	}

	return err
}

func (e *UnknownNamespaceError) Error() string {
	msg := fmt.Sprintf("unknown namespace %q (known: %s)", e.Namespace, e.Known)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(", did you mean %q?", e.Suggestion)
	}

	return msg
}

var (
	errDanglingEscape = errors.New("dangling escape")
	errBadEscape      = errors.New("unknown escape sequence")
)
