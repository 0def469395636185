// Package emit maps assembled contexts onto the output document shape. The
// mapping is pure and total: assembly has already caught every fallible
// condition, so emission is a field-for-field translation that preserves
// scope names verbatim and keeps push, pop, and set strictly distinct.
package emit

import (
	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/output"
)

// Document builds the serializable automaton from the grammar metadata and
// the assembled contexts, in order.
func Document(meta config.Meta, contexts []*config.Context) *output.Document {
	doc := &output.Document{
		Name:           meta.Name,
		FileExtensions: meta.FileExtensions,
		Scope:          meta.Scope,
		Hidden:         meta.Hidden,
		Main:           meta.Main,
	}

	for _, c := range contexts {
		doc.Contexts = append(doc.Contexts, output.NamedContext{
			Name:    c.Name,
			Context: Context(c),
		})
	}
	return doc
}

// Context emits one assembled context.
func Context(c *config.Context) *output.Context {
	out := &output.Context{
		MetaScope:            c.MetaScope,
		MetaContentScope:     c.MetaContentScope,
		MetaIncludePrototype: c.MetaIncludePrototype,
	}
	for _, r := range c.Rules {
		out.Rules = append(out.Rules, Rule(r))
	}
	return out
}

// Rule emits one assembled rule. Assembled rules never carry an include:
// the assembler splices those away before emission.
func Rule(r *config.Rule) *output.Rule {
	return &output.Rule{
		Match:       r.Match,
		Scope:       r.Scope,
		Captures:    r.Captures,
		Push:        r.Push,
		Pop:         r.Pop,
		Set:         r.Set,
		Embed:       r.Embed,
		EmbedScope:  r.EmbedScope,
		Escape:      r.Escape,
		BranchPoint: r.BranchPoint,
		Branch:      r.Branch,
		Fail:        r.Fail,
	}
}
