package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"

	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/ctxlog"
	"github.com/grammarkit/grammarc/internal/diag"
	"github.com/grammarkit/grammarc/internal/fsutil"
	"github.com/grammarkit/grammarc/internal/schema"
)

// Extension is the file suffix identifying grammar fragments.
const Extension = ".hcl"

// DefaultMain is the entry context used when the syntax block does not name one.
const DefaultMain = "main"

// Loader reads grammar fragments through an afero filesystem so tests can
// run against an in-memory tree.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a fragment loader over the given filesystem.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys}
}

// Load discovers, parses, and merges every fragment under root into one
// grammar document. It implements config.Loader.
func (l *Loader) Load(ctx context.Context, root string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Fragment loader started.", "root", root)

	files, err := fsutil.FindFilesByExtension(l.fs, root, Extension)
	if err != nil {
		return nil, &diag.IOError{Op: "scanning grammar directory", Path: root, Err: err}
	}
	if len(files) == 0 {
		return nil, &diag.SchemaError{
			Subject: "grammar root " + root,
			Detail:  "no " + Extension + " fragment files found",
		}
	}
	logger.Debug("Discovered fragment files.", "count", len(files))

	doc := &config.Document{
		Variables: make(map[string]string),
	}
	var syntaxFile string

	parser := hclparse.NewParser()
	for _, file := range files {
		fragment, err := l.parseFragment(parser, file)
		if err != nil {
			return nil, err
		}

		if fragment.Syntax != nil {
			if syntaxFile != "" {
				return nil, &diag.SchemaError{
					File:    file,
					Subject: "syntax block",
					Detail:  fmt.Sprintf("already declared in %s; a grammar has exactly one", syntaxFile),
				}
			}
			syntaxFile = file
			doc.Meta = translateMeta(fragment.Syntax)
		}

		if err := l.mergeVariables(doc, fragment, file); err != nil {
			return nil, err
		}
		if err := l.mergeContexts(doc, fragment, file); err != nil {
			return nil, err
		}
	}

	if syntaxFile == "" {
		return nil, &diag.SchemaError{
			Subject: "syntax block",
			Detail:  "no fragment declares the grammar's name and scope",
		}
	}
	if len(doc.Contexts) == 0 {
		return nil, &diag.SchemaError{
			File:    syntaxFile,
			Subject: "contexts",
			Detail:  "grammar defines no contexts",
		}
	}

	logger.Debug("Fragment loading complete.",
		"variables", len(doc.Variables),
		"contexts", len(doc.Contexts),
		"main", doc.Meta.Main,
	)
	return doc, nil
}

// parseFragment reads and decodes one fragment file. Unreadable or
// syntactically invalid HCL is a ParseError; a file that parses but does not
// match the fragment schema is a SchemaError.
func (l *Loader) parseFragment(parser *hclparse.Parser, file string) (*schema.FragmentFile, error) {
	src, err := afero.ReadFile(l.fs, file)
	if err != nil {
		return nil, &diag.IOError{Op: "reading grammar fragment", Path: file, Err: err}
	}

	hclFile, diags := parser.ParseHCL(src, file)
	if diags.HasErrors() {
		return nil, &diag.ParseError{File: file, Err: diags}
	}

	var fragment schema.FragmentFile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &fragment); diags.HasErrors() {
		return nil, &diag.SchemaError{
			File:    file,
			Subject: "fragment body",
			Detail:  diags.Error(),
		}
	}
	return &fragment, nil
}

func (l *Loader) mergeVariables(doc *config.Document, fragment *schema.FragmentFile, file string) error {
	for _, block := range fragment.Variables {
		vars, err := translateVariables(block, file)
		if err != nil {
			return err
		}
		for _, v := range vars {
			if _, exists := doc.Variables[v.name]; exists {
				return &diag.SchemaError{
					File:    file,
					Subject: "variable " + v.name,
					Detail:  "declared more than once across the grammar",
				}
			}
			doc.Variables[v.name] = v.pattern
		}
	}
	return nil
}

func (l *Loader) mergeContexts(doc *config.Document, fragment *schema.FragmentFile, file string) error {
	for _, block := range fragment.Contexts {
		if prev := doc.Context(block.Name); prev != nil {
			return &diag.SchemaError{
				File:    file,
				Subject: "context " + block.Name,
				Detail:  "already declared in " + prev.File,
			}
		}
		translated, err := translateContext(block, file)
		if err != nil {
			return err
		}
		doc.Contexts = append(doc.Contexts, translated)
	}
	return nil
}
