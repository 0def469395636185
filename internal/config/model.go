package config

// Document is the unified in-memory representation of one grammar: all
// fragments merged, variables still unexpanded, includes still symbolic.
type Document struct {
	Meta      Meta
	Variables map[string]string
	Contexts  []*Context
}

// Context returns the named context, or nil when the grammar does not
// define it.
func (d *Document) Context(name string) *Context {
	for _, c := range d.Contexts {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Meta holds the grammar's top-level metadata from the `syntax` block.
type Meta struct {
	Name           string
	Scope          string
	FileExtensions []string
	Main           string
	Hidden         bool
}

// Context is a named, ordered sequence of rules. Order is significant: the
// consuming highlighting engine applies first-match-wins semantics, so every
// stage of the pipeline preserves authored order exactly.
type Context struct {
	Name string
	// File is the fragment file that declared the context, kept for
	// diagnostics only.
	File string

	MetaScope            string
	MetaContentScope     string
	MetaIncludePrototype *bool

	Rules []*Rule
}

// Rule is one lexical rule. Either Include is set and every other field is
// empty (a compile-time splice of another context's rules), or Match is set
// together with at most one of Push/Pop/Set.
type Rule struct {
	Include string

	Match    string
	Scope    string
	Captures map[int]string

	Push string
	Pop  bool
	Set  string

	// Embed delegates to another context (or, with a "scope:" prefix, to an
	// entirely different grammar) until Escape matches. Preserved
	// structurally; the runtime engine implements the delegation.
	Embed      string
	EmbedScope string
	Escape     string

	// Branch point support, preserved structurally for grammars that use
	// the engine's speculative branching.
	BranchPoint string
	Branch      []string
	Fail        string
}

// Clone returns a deep copy of the rule so stages can rewrite patterns
// without mutating the loaded document.
func (r *Rule) Clone() *Rule {
	c := *r
	if r.Captures != nil {
		c.Captures = make(map[int]string, len(r.Captures))
		for k, v := range r.Captures {
			c.Captures[k] = v
		}
	}
	if r.Branch != nil {
		c.Branch = append([]string(nil), r.Branch...)
	}
	return &c
}
