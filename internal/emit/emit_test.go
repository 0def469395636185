package emit

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarkit/grammarc/internal/config"
	"github.com/grammarkit/grammarc/internal/output"
)

func TestRule(t *testing.T) {
	t.Run("scope names are preserved verbatim", func(t *testing.T) {
		r := Rule(&config.Rule{Match: `\bmodule\b`, Scope: "keyword.other.haskell"})
		assert.Equal(t, "keyword.other.haskell", r.Scope)
		assert.Equal(t, `\bmodule\b`, r.Match)
	})

	t.Run("push pop and set stay distinct", func(t *testing.T) {
		push := Rule(&config.Rule{Match: "x", Push: "strings"})
		assert.Equal(t, "strings", push.Push)
		assert.False(t, push.Pop)
		assert.Empty(t, push.Set)

		pop := Rule(&config.Rule{Match: "x", Pop: true})
		assert.True(t, pop.Pop)
		assert.Empty(t, pop.Push)
		assert.Empty(t, pop.Set)

		set := Rule(&config.Rule{Match: "x", Set: "strings"})
		assert.Equal(t, "strings", set.Set)
		assert.Empty(t, set.Push)
		assert.False(t, set.Pop)
	})

	t.Run("captures and structural fields carry over", func(t *testing.T) {
		got := Rule(&config.Rule{
			Match:       `(foo)(bar)`,
			Captures:    map[int]string{1: "scope.one", 2: "scope.two"},
			BranchPoint: "bp",
			Branch:      []string{"a", "b"},
			Fail:        "bp",
		})
		want := &output.Rule{
			Match:       `(foo)(bar)`,
			Captures:    map[int]string{1: "scope.one", 2: "scope.two"},
			BranchPoint: "bp",
			Branch:      []string{"a", "b"},
			Fail:        "bp",
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("emitted rule mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDocument(t *testing.T) {
	meta := config.Meta{
		Name:           "Haskell",
		Scope:          "source.haskell",
		FileExtensions: []string{"hs"},
		Main:           "main",
	}
	contexts := []*config.Context{
		{Name: "main", Rules: []*config.Rule{{Match: "a"}}},
		{Name: "strings", MetaScope: "string.quoted.double.haskell", Rules: []*config.Rule{{Match: `"`, Pop: true}}},
	}

	doc := Document(meta, contexts)

	require.Len(t, doc.Contexts, 2)
	assert.Equal(t, "Haskell", doc.Name)
	assert.Equal(t, "source.haskell", doc.Scope)
	assert.Equal(t, "main", doc.Main)

	// Context order is authored order.
	assert.Equal(t, "main", doc.Contexts[0].Name)
	assert.Equal(t, "strings", doc.Contexts[1].Name)
	assert.Equal(t, "string.quoted.double.haskell", doc.Contexts[1].Context.MetaScope)
}
