package assemble

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/diag"
)

// doc builds a minimal document with a main context plus the given extras.
func doc(contexts ...*config.Context) *config.Document {
	return &config.Document{
		Meta:     config.Meta{Name: "Haskell", Scope: "source.haskell", Main: "main"},
		Contexts: contexts,
	}
}

func matchRule(pattern, scope string) *config.Rule {
	return &config.Rule{Match: pattern, Scope: scope}
}

func TestContexts_VariableSubstitution(t *testing.T) {
	ctx := context.Background()

	t.Run("match patterns are substituted", func(t *testing.T) {
		d := doc(&config.Context{
			Name:  "main",
			Rules: []*config.Rule{matchRule(`\b{{kw}}\b`, "keyword.other.haskell")},
		})
		vars := map[string]string{"kw": "module|where"}

		assembled, err := Contexts(ctx, d, vars)
		require.NoError(t, err)
		require.Len(t, assembled, 1)
		assert.Equal(t, `\bmodule|where\b`, assembled[0].Rules[0].Match)
	})

	t.Run("escape patterns are substituted", func(t *testing.T) {
		d := doc(&config.Context{
			Name: "main",
			Rules: []*config.Rule{{
				Match:  `x`,
				Embed:  "scope:source.c",
				Escape: `{{end}}`,
			}},
		})

		assembled, err := Contexts(ctx, d, map[string]string{"end": `\]`})
		require.NoError(t, err)
		assert.Equal(t, `\]`, assembled[0].Rules[0].Escape)
	})

	t.Run("loaded document is not mutated", func(t *testing.T) {
		rule := matchRule(`{{kw}}`, "keyword")
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{rule}})

		_, err := Contexts(ctx, d, map[string]string{"kw": "module"})
		require.NoError(t, err)
		assert.Equal(t, `{{kw}}`, rule.Match)
	})

	t.Run("unresolved reference at this stage is an error", func(t *testing.T) {
		d := doc(&config.Context{
			Name:  "main",
			Rules: []*config.Rule{matchRule(`{{missing}}`, "")},
		})

		_, err := Contexts(ctx, d, map[string]string{})
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, diag.RefVariable, refErr.Kind)
		assert.Equal(t, "main", refErr.Site)
	})
}

func TestContexts_Includes(t *testing.T) {
	ctx := context.Background()
	noVars := map[string]string{}

	t.Run("include splices in place preserving order", func(t *testing.T) {
		d := doc(
			&config.Context{Name: "main", Rules: []*config.Rule{
				matchRule("r1", "one"),
				{Include: "shared"},
				matchRule("r3", "three"),
			}},
			&config.Context{Name: "shared", Rules: []*config.Rule{
				matchRule("ri1", "inner.one"),
				matchRule("ri2", "inner.two"),
			}},
		)

		assembled, err := Contexts(ctx, d, noVars)
		require.NoError(t, err)

		main := assembled[0]
		require.Len(t, main.Rules, 4)
		got := make([]string, 0, 4)
		for _, r := range main.Rules {
			got = append(got, r.Match)
		}
		assert.Equal(t, []string{"r1", "ri1", "ri2", "r3"}, got)
	})

	t.Run("nested includes flatten recursively", func(t *testing.T) {
		d := doc(
			&config.Context{Name: "main", Rules: []*config.Rule{{Include: "outer"}}},
			&config.Context{Name: "outer", Rules: []*config.Rule{
				matchRule("o1", ""),
				{Include: "inner"},
			}},
			&config.Context{Name: "inner", Rules: []*config.Rule{matchRule("i1", "")}},
		)

		assembled, err := Contexts(ctx, d, noVars)
		require.NoError(t, err)

		main := assembled[0]
		require.Len(t, main.Rules, 2)
		assert.Equal(t, "o1", main.Rules[0].Match)
		assert.Equal(t, "i1", main.Rules[1].Match)
	})

	t.Run("included context still exists on its own", func(t *testing.T) {
		d := doc(
			&config.Context{Name: "main", Rules: []*config.Rule{{Include: "shared"}}},
			&config.Context{Name: "shared", Rules: []*config.Rule{matchRule("s", "")}},
		)

		assembled, err := Contexts(ctx, d, noVars)
		require.NoError(t, err)
		require.Len(t, assembled, 2)
		assert.Equal(t, "shared", assembled[1].Name)
	})

	t.Run("include of undefined context fails", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{{Include: "ghost"}}})

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, diag.RefContext, refErr.Kind)
		assert.Equal(t, "ghost", refErr.Name)
		assert.Equal(t, "main", refErr.Site)
	})

	t.Run("include cycle fails with IncludeCycleError not CycleError", func(t *testing.T) {
		d := doc(
			&config.Context{Name: "main", Rules: []*config.Rule{{Include: "a"}}},
			&config.Context{Name: "a", Rules: []*config.Rule{{Include: "b"}}},
			&config.Context{Name: "b", Rules: []*config.Rule{{Include: "a"}}},
		)

		_, err := Contexts(ctx, d, noVars)
		var includeCycle *diag.IncludeCycleError
		require.ErrorAs(t, err, &includeCycle)
		assert.ElementsMatch(t, []string{"a", "b"}, includeCycle.Members)

		var varCycle *diag.CycleError
		assert.False(t, errors.As(err, &varCycle), "include cycles must not surface as variable cycles")
	})
}

func TestContexts_ReferenceValidation(t *testing.T) {
	ctx := context.Background()
	noVars := map[string]string{}

	t.Run("push target must exist", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{
			{Match: "x", Push: "missing"},
		}})

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, diag.RefContext, refErr.Kind)
		assert.Equal(t, "missing", refErr.Name)
	})

	t.Run("set target must exist", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{
			{Match: "x", Set: "missing"},
		}})

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
	})

	t.Run("branch targets must exist", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{
			{Match: "x", BranchPoint: "bp", Branch: []string{"missing"}},
		}})

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "missing", refErr.Name)
	})

	t.Run("local embed target must exist", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{
			{Match: "x", Embed: "missing", Escape: "y"},
		}})

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
	})

	t.Run("external embed targets are exempt", func(t *testing.T) {
		d := doc(&config.Context{Name: "main", Rules: []*config.Rule{
			{Match: "x", Embed: "scope:source.c", Escape: "y"},
		}})

		_, err := Contexts(ctx, d, noVars)
		assert.NoError(t, err)
	})

	t.Run("valid push target passes and stays symbolic", func(t *testing.T) {
		d := doc(
			&config.Context{Name: "main", Rules: []*config.Rule{{Match: "x", Push: "strings"}}},
			&config.Context{Name: "strings", Rules: []*config.Rule{{Match: `"`, Pop: true}}},
		)

		assembled, err := Contexts(ctx, d, noVars)
		require.NoError(t, err)
		assert.Equal(t, "strings", assembled[0].Rules[0].Push)
	})

	t.Run("missing main context fails", func(t *testing.T) {
		d := &config.Document{
			Meta:     config.Meta{Name: "X", Scope: "source.x", Main: "main"},
			Contexts: []*config.Context{{Name: "other"}},
		}

		_, err := Contexts(ctx, d, noVars)
		var refErr *diag.UndefinedReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "main", refErr.Name)
		assert.Equal(t, "syntax.main", refErr.Site)
	})
}

func TestContexts_MetaFieldsSurvive(t *testing.T) {
	ctx := context.Background()
	yes := true
	d := doc(&config.Context{
		Name:                 "main",
		MetaScope:            "meta.block.haskell",
		MetaIncludePrototype: &yes,
		Rules:                []*config.Rule{matchRule("x", "")},
	})

	assembled, err := Contexts(ctx, d, map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "meta.block.haskell", assembled[0].MetaScope)
	require.NotNil(t, assembled[0].MetaIncludePrototype)
	assert.True(t, *assembled[0].MetaIncludePrototype)
}
