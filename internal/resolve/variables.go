// Package resolve expands named regex variables. A variable's pattern may
// reference other variables with sublime-syntax `{{name}}` tokens; expansion
// replaces every token with its fully-expanded pattern text, in place.
package resolve

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/grammarkit/grammarc/internal/ctxlog"
	"github.com/grammarkit/grammarc/internal/diag"
	"github.com/grammarkit/grammarc/internal/graph"
)

// reference matches one `{{name}}` variable token. Group 1 is the name.
var reference = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// Variables expands every variable to its fixed point and returns a new
// map; the input is not mutated. A reference to an unknown variable is an
// UndefinedReferenceError, a reference cycle is a CycleError naming every
// variable on the cycle. Expansion is idempotent: running it over an
// already-expanded map returns an equal map.
func Variables(ctx context.Context, vars map[string]string) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	// Sorted iteration keeps edge order, and therefore the reported cycle,
	// stable across runs.
	g := graph.New()
	for _, name := range names {
		g.AddNode(name)
		for _, ref := range referencedNames(vars[name]) {
			if _, ok := vars[ref]; !ok {
				return nil, &diag.UndefinedReferenceError{
					Kind: diag.RefVariable,
					Name: ref,
					Site: name,
				}
			}
			g.AddEdge(name, ref)
		}
	}
	if cycle := g.FindCycle(); cycle != nil {
		return nil, &diag.CycleError{Members: cycle}
	}

	// The graph is acyclic, so memoized recursion terminates and visits
	// each variable once.
	e := &expander{raw: vars, done: make(map[string]string, len(vars))}
	expanded := make(map[string]string, len(vars))
	for _, name := range names {
		expanded[name] = e.expand(name)
	}

	logger.Debug("Variable expansion complete.", "count", len(expanded))
	return expanded, nil
}

// Substitute replaces every variable token in pattern using an
// already-expanded variable map. A token naming an unknown variable is an
// UndefinedReferenceError reported against site.
func Substitute(pattern string, expanded map[string]string, site string) (string, error) {
	var undefined *diag.UndefinedReferenceError
	out := replaceReferences(pattern, func(name string) string {
		value, ok := expanded[name]
		if !ok && undefined == nil {
			undefined = &diag.UndefinedReferenceError{
				Kind: diag.RefVariable,
				Name: name,
				Site: site,
			}
		}
		return value
	})
	if undefined != nil {
		return "", undefined
	}
	return out, nil
}

type expander struct {
	raw  map[string]string
	done map[string]string
}

func (e *expander) expand(name string) string {
	if v, ok := e.done[name]; ok {
		return v
	}
	v := replaceReferences(e.raw[name], e.expand)
	e.done[name] = v
	return v
}

// replaceReferences substitutes each `{{name}}` token at its position,
// leaving all surrounding pattern text untouched.
func replaceReferences(pattern string, lookup func(name string) string) string {
	matches := reference.FindAllStringSubmatchIndex(pattern, -1)
	if matches == nil {
		return pattern
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(pattern[last:m[0]])
		b.WriteString(lookup(pattern[m[2]:m[3]]))
		last = m[1]
	}
	b.WriteString(pattern[last:])
	return b.String()
}

// referencedNames lists the variable names referenced by pattern, in order
// of appearance.
func referencedNames(pattern string) []string {
	var names []string
	for _, m := range reference.FindAllStringSubmatch(pattern, -1) {
		names = append(names, m[1])
	}
	return names
}
