package hcl

import (
	"sort"
	"strconv"

	"github.com/zclconf/go-cty/cty"

	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/diag"
	"github.com/grammarkit/grammarc/internal/schema"
)

// translateMeta converts the HCL syntax block into the agnostic metadata,
// applying the default entry-context name.
func translateMeta(s *schema.SyntaxBlock) config.Meta {
	meta := config.Meta{
		Name:           s.Name,
		Scope:          s.Scope,
		FileExtensions: s.FileExtensions,
		Main:           s.Main,
		Hidden:         s.Hidden,
	}
	if meta.Main == "" {
		meta.Main = DefaultMain
	}
	return meta
}

type namedPattern struct {
	name    string
	pattern string
}

// translateVariables evaluates the free-form attributes of a variables block
// into name/pattern pairs, sorted by name so merge order is deterministic.
// Every variable must evaluate to a literal string.
func translateVariables(block *schema.VariablesBlock, file string) ([]namedPattern, error) {
	attrs, diags := block.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, &diag.SchemaError{File: file, Subject: "variables block", Detail: diags.Error()}
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	vars := make([]namedPattern, 0, len(names))
	for _, name := range names {
		val, diags := attrs[name].Expr.Value(nil)
		if diags.HasErrors() {
			return nil, &diag.SchemaError{File: file, Subject: "variable " + name, Detail: diags.Error()}
		}
		if val.Type() != cty.String {
			return nil, &diag.SchemaError{
				File:    file,
				Subject: "variable " + name,
				Detail:  "pattern must be a string, got " + val.Type().FriendlyName(),
			}
		}
		vars = append(vars, namedPattern{name: name, pattern: val.AsString()})
	}
	return vars, nil
}

// translateContext converts one HCL context block, validating each rule's
// field combinations on the way.
func translateContext(block *schema.ContextBlock, file string) (*config.Context, error) {
	c := &config.Context{
		Name:                 block.Name,
		File:                 file,
		MetaScope:            block.MetaScope,
		MetaContentScope:     block.MetaContentScope,
		MetaIncludePrototype: block.MetaIncludePrototype,
	}

	for i, rb := range block.Rules {
		rule, err := translateRule(rb, block.Name, i, file)
		if err != nil {
			return nil, err
		}
		c.Rules = append(c.Rules, rule)
	}
	return c, nil
}

func translateRule(rb *schema.RuleBlock, contextName string, index int, file string) (*config.Rule, error) {
	subject := "context " + contextName + ", rule " + strconv.Itoa(index+1)

	if rb.Include != "" {
		if rb.Match != "" || rb.Scope != "" || len(rb.Captures) > 0 ||
			rb.Push != "" || rb.Pop || rb.Set != "" ||
			rb.Embed != "" || rb.Escape != "" || rb.BranchPoint != "" || len(rb.Branch) > 0 {
			return nil, &diag.SchemaError{
				File:    file,
				Subject: subject,
				Detail:  "include rules may carry no other fields",
			}
		}
		return &config.Rule{Include: rb.Include}, nil
	}

	if rb.Match == "" {
		return nil, &diag.SchemaError{
			File:    file,
			Subject: subject,
			Detail:  "rule needs either match or include",
		}
	}

	actions := 0
	for _, set := range []bool{rb.Push != "", rb.Pop, rb.Set != "", rb.Embed != ""} {
		if set {
			actions++
		}
	}
	if actions > 1 {
		return nil, &diag.SchemaError{
			File:    file,
			Subject: subject,
			Detail:  "push, pop, set, and embed are mutually exclusive",
		}
	}
	if rb.Embed != "" && rb.Escape == "" {
		return nil, &diag.SchemaError{
			File:    file,
			Subject: subject,
			Detail:  "embed requires an escape pattern",
		}
	}

	captures, err := translateCaptures(rb.Captures, subject, file)
	if err != nil {
		return nil, err
	}

	return &config.Rule{
		Match:       rb.Match,
		Scope:       rb.Scope,
		Captures:    captures,
		Push:        rb.Push,
		Pop:         rb.Pop,
		Set:         rb.Set,
		Embed:       rb.Embed,
		EmbedScope:  rb.EmbedScope,
		Escape:      rb.Escape,
		BranchPoint: rb.BranchPoint,
		Branch:      rb.Branch,
		Fail:        rb.Fail,
	}, nil
}

// translateCaptures converts capture-group keys from the HCL string form to
// the numeric group indices the output document uses.
func translateCaptures(raw map[string]string, subject, file string) (map[int]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	captures := make(map[int]string, len(raw))
	for key, scope := range raw {
		group, err := strconv.Atoi(key)
		if err != nil || group < 0 {
			return nil, &diag.SchemaError{
				File:    file,
				Subject: subject,
				Detail:  "capture key " + strconv.Quote(key) + " is not a capture group number",
			}
		}
		captures[group] = scope
	}
	return captures, nil
}
