// Package diag defines the error taxonomy shared by every compiler stage.
//
// All of these errors are fatal to a run: the compiler fails fast with a
// diagnostic naming the offending file, variable, or context rather than
// emitting a partially consistent syntax definition.
package diag

import (
	"fmt"
	"strings"
)

// RefKind distinguishes the two reference namespaces of a grammar: regex
// variables and contexts. The two graphs share no node identities, so a
// diagnostic always says which namespace the missing name belongs to.
type RefKind string

const (
	RefVariable RefKind = "variable"
	RefContext  RefKind = "context"
)

// ParseError reports a fragment file the HCL parser could not read.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse grammar fragment %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a fragment that parsed but does not have the required
// shape: missing or duplicated top-level keys, conflicting rule actions, and
// the like.
type SchemaError struct {
	File    string
	Subject string
	Detail  string
}

func (e *SchemaError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("invalid grammar: %s: %s", e.Subject, e.Detail)
	}
	return fmt.Sprintf("invalid grammar in %s: %s: %s", e.File, e.Subject, e.Detail)
}

// UndefinedReferenceError reports a reference to a variable or context that
// is not defined anywhere in the loaded grammar. Site names the variable,
// context, or metadata field containing the dangling reference.
type UndefinedReferenceError struct {
	Kind RefKind
	Name string
	Site string
}

func (e *UndefinedReferenceError) Error() string {
	return fmt.Sprintf("undefined %s %q referenced from %q", e.Kind, e.Name, e.Site)
}

// CycleError reports a cycle in the variable reference graph. Members lists
// every variable on the cycle, in reference order.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("variable reference cycle: %s", cyclePath(e.Members))
}

// IncludeCycleError reports a cycle in the context include graph. This is
// deliberately a separate type from CycleError: variables and contexts are
// different node sets and a diagnostic must not conflate them.
type IncludeCycleError struct {
	Members []string
}

func (e *IncludeCycleError) Error() string {
	return fmt.Sprintf("context include cycle: %s", cyclePath(e.Members))
}

// IOError reports a filesystem failure while writing the output document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// cyclePath renders [a b c] as "a -> b -> c -> a" so the member that closes
// the cycle is visible in the message.
func cyclePath(members []string) string {
	if len(members) == 0 {
		return "(empty)"
	}
	return strings.Join(members, " -> ") + " -> " + members[0]
}
