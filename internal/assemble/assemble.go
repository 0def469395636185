// Package assemble flattens a grammar document into its final contexts:
// variable tokens substituted into every pattern, include rules spliced in
// place, and all context references validated against the final context set.
//
// Includes are a compile-time operation and never survive assembly. Push and
// set are runtime stack transitions and stay symbolic in the output; the
// assembler only proves their targets exist.
package assemble

import (
	"context"
	"strings"

	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/ctxlog"
	"github.com/grammarkit/grammarc/internal/diag"
	"github.com/grammarkit/grammarc/internal/graph"
	"github.com/grammarkit/grammarc/internal/resolve"
)

// externalEmbedPrefix marks embed targets that delegate to another grammar
// by scope name instead of a local context.
const externalEmbedPrefix = "scope:"

// Contexts resolves every context of the document against the expanded
// variable map. The returned contexts are new values in authored order; the
// input document is not mutated.
func Contexts(ctx context.Context, doc *config.Document, vars map[string]string) ([]*config.Context, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Context assembly started.", "contexts", len(doc.Contexts))

	a := &assembler{
		vars:      vars,
		index:     make(map[string]*config.Context, len(doc.Contexts)),
		flattened: make(map[string][]*config.Rule, len(doc.Contexts)),
	}

	// First pass: substitute variables into every pattern and index the
	// contexts by name.
	for _, c := range doc.Contexts {
		substituted, err := a.substituteContext(c)
		if err != nil {
			return nil, err
		}
		a.index[c.Name] = substituted
	}

	// Second pass: prove the include graph is acyclic before splicing. The
	// include graph is a separate node set from the variable graph; a cycle
	// here is an IncludeCycleError, never a CycleError.
	includes := graph.New()
	for _, c := range doc.Contexts {
		includes.AddNode(c.Name)
		for _, r := range a.index[c.Name].Rules {
			if r.Include == "" {
				continue
			}
			if _, ok := a.index[r.Include]; !ok {
				return nil, &diag.UndefinedReferenceError{
					Kind: diag.RefContext,
					Name: r.Include,
					Site: c.Name,
				}
			}
			includes.AddEdge(c.Name, r.Include)
		}
	}
	if cycle := includes.FindCycle(); cycle != nil {
		return nil, &diag.IncludeCycleError{Members: cycle}
	}

	// Third pass: splice includes and validate the remaining context
	// references against the final name set.
	assembled := make([]*config.Context, 0, len(doc.Contexts))
	for _, c := range doc.Contexts {
		flat := a.flatten(c.Name)
		if err := a.validateReferences(c.Name, flat); err != nil {
			return nil, err
		}

		resolved := *a.index[c.Name]
		resolved.Rules = flat
		assembled = append(assembled, &resolved)
	}

	if _, ok := a.index[doc.Meta.Main]; !ok {
		return nil, &diag.UndefinedReferenceError{
			Kind: diag.RefContext,
			Name: doc.Meta.Main,
			Site: "syntax.main",
		}
	}

	logger.Debug("Context assembly complete.", "contexts", len(assembled))
	return assembled, nil
}

type assembler struct {
	vars      map[string]string
	index     map[string]*config.Context
	flattened map[string][]*config.Rule
}

// substituteContext returns a copy of the context with every variable token
// in its match and escape patterns replaced by literal pattern text.
func (a *assembler) substituteContext(c *config.Context) (*config.Context, error) {
	out := *c
	out.Rules = make([]*config.Rule, 0, len(c.Rules))

	for _, r := range c.Rules {
		rule := r.Clone()
		var err error
		if rule.Match != "" {
			if rule.Match, err = resolve.Substitute(rule.Match, a.vars, c.Name); err != nil {
				return nil, err
			}
		}
		if rule.Escape != "" {
			if rule.Escape, err = resolve.Substitute(rule.Escape, a.vars, c.Name); err != nil {
				return nil, err
			}
		}
		out.Rules = append(out.Rules, rule)
	}
	return &out, nil
}

// flatten returns the context's rules with every include rule replaced, in
// place, by the included context's flattened rules. Memoized; the include
// graph is already known to be acyclic.
func (a *assembler) flatten(name string) []*config.Rule {
	if rules, ok := a.flattened[name]; ok {
		return rules
	}

	var rules []*config.Rule
	for _, r := range a.index[name].Rules {
		if r.Include == "" {
			rules = append(rules, r)
			continue
		}
		rules = append(rules, a.flatten(r.Include)...)
	}

	a.flattened[name] = rules
	return rules
}

// validateReferences checks every push, set, branch, and local embed target
// of the flattened rules against the final context set.
func (a *assembler) validateReferences(contextName string, rules []*config.Rule) error {
	check := func(target string) error {
		if _, ok := a.index[target]; !ok {
			return &diag.UndefinedReferenceError{
				Kind: diag.RefContext,
				Name: target,
				Site: contextName,
			}
		}
		return nil
	}

	for _, r := range rules {
		if r.Push != "" {
			if err := check(r.Push); err != nil {
				return err
			}
		}
		if r.Set != "" {
			if err := check(r.Set); err != nil {
				return err
			}
		}
		if r.Embed != "" && !strings.HasPrefix(r.Embed, externalEmbedPrefix) {
			if err := check(r.Embed); err != nil {
				return err
			}
		}
		for _, target := range r.Branch {
			if err := check(target); err != nil {
				return err
			}
		}
	}
	return nil
}
