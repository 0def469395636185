// Package schema declares the HCL shapes of grammar fragment files. These
// structs are decode targets only; the loader translates them into the
// format-agnostic model in the `config` package.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// FragmentFile is the top-level structure of one grammar fragment.
type FragmentFile struct {
	Syntax    *SyntaxBlock      `hcl:"syntax,block"`
	Variables []*VariablesBlock `hcl:"variables,block"`
	Contexts  []*ContextBlock   `hcl:"context,block"`
}

// SyntaxBlock carries the grammar's document-level metadata. Exactly one
// fragment across the whole tree may declare it.
type SyntaxBlock struct {
	Name           string   `hcl:"name"`
	Scope          string   `hcl:"scope"`
	FileExtensions []string `hcl:"file_extensions,optional"`
	Main           string   `hcl:"main,optional"`
	Hidden         bool     `hcl:"hidden,optional"`
}

// VariablesBlock holds named regex sub-patterns as free-form attributes.
// The body is kept raw so the loader can report each attribute's range.
type VariablesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// ContextBlock is one named context and its ordered rule blocks.
type ContextBlock struct {
	Name string `hcl:"name,label"`

	MetaScope            string `hcl:"meta_scope,optional"`
	MetaContentScope     string `hcl:"meta_content_scope,optional"`
	MetaIncludePrototype *bool  `hcl:"meta_include_prototype,optional"`

	Rules []*RuleBlock `hcl:"rule,block"`
}

// RuleBlock is one lexical rule as authored. Validation of mutually
// exclusive fields happens in the loader, not here, so the diagnostic can
// name the fragment file.
type RuleBlock struct {
	Include string `hcl:"include,optional"`

	Match    string            `hcl:"match,optional"`
	Scope    string            `hcl:"scope,optional"`
	Captures map[string]string `hcl:"captures,optional"`

	Push string `hcl:"push,optional"`
	Pop  bool   `hcl:"pop,optional"`
	Set  string `hcl:"set,optional"`

	Embed      string `hcl:"embed,optional"`
	EmbedScope string `hcl:"embed_scope,optional"`
	Escape     string `hcl:"escape,optional"`

	BranchPoint string   `hcl:"branch_point,optional"`
	Branch      []string `hcl:"branch,optional"`
	Fail        string   `hcl:"fail,optional"`
}
