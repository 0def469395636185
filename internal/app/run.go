package app

import (
	"context"
	"fmt"

	"github.com/grammarkit/grammarc/internal/assemble"
	"github.com/grammarkit/grammarc/internal/ctxlog"
	"github.com/grammarkit/grammarc/internal/emit"
	"github.com/grammarkit/grammarc/internal/output"
	"github.com/grammarkit/grammarc/internal/resolve"
)

// Run executes one generation run. The pipeline is strictly linear; the
// first failing stage aborts the run and the destination file keeps its
// pre-run content.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("Run started.", "grammar_path", a.config.GrammarPath)

	doc, err := a.loader.Load(ctx, a.config.GrammarPath)
	if err != nil {
		return fmt.Errorf("loading grammar: %w", err)
	}
	a.logger.Debug("Pipeline advanced.", "state", "Loaded")

	vars, err := resolve.Variables(ctx, doc.Variables)
	if err != nil {
		return fmt.Errorf("expanding variables: %w", err)
	}
	a.logger.Debug("Pipeline advanced.", "state", "VariablesExpanded")

	contexts, err := assemble.Contexts(ctx, doc, vars)
	if err != nil {
		return fmt.Errorf("assembling contexts: %w", err)
	}
	a.logger.Debug("Pipeline advanced.", "state", "ContextsAssembled")

	outDoc := emit.Document(doc.Meta, contexts)
	a.logger.Debug("Pipeline advanced.", "state", "Emitted")

	path := a.config.OutputPath
	if path == "" {
		path = doc.Meta.Name + ".sublime-syntax"
	}
	if err := output.NewWriter(a.fs).Write(ctx, outDoc, path); err != nil {
		return fmt.Errorf("writing syntax definition: %w", err)
	}
	a.logger.Debug("Pipeline advanced.", "state", "Written")

	a.logger.Info("Syntax definition generated.",
		"path", path,
		"contexts", len(contexts),
		"variables", len(vars),
	)
	return nil
}
