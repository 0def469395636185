// Package output models the flattened syntax definition the highlighting
// engine consumes and serializes it to YAML. Key order matters twice over:
// context order and rule order are first-match-wins semantics, so the
// document marshals through explicit yaml.Node mappings instead of Go maps.
package output

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// header precedes every serialized document, matching the engine's expected
// YAML directive.
const header = "%YAML 1.2\n---\n"

// Document is the complete automaton definition: metadata plus the ordered
// context map with all variables expanded and all includes spliced.
type Document struct {
	Name           string
	FileExtensions []string
	Scope          string
	Hidden         bool
	// Main names the entry context.
	Main     string
	Contexts []NamedContext
}

// NamedContext pairs a context name with its definition, preserving the
// authored context order that a Go map would lose.
type NamedContext struct {
	Name    string
	Context *Context
}

// Context is one fully-resolved context: optional meta entries followed by
// the ordered rule list.
type Context struct {
	MetaScope            string
	MetaContentScope     string
	MetaIncludePrototype *bool
	Rules                []*Rule
}

// Rule is one serializable match rule. At most one of Push/Pop/Set/Embed is
// populated; absent fields are omitted entirely so the engine never sees an
// empty action key.
type Rule struct {
	Match       string         `yaml:"match"`
	Scope       string         `yaml:"scope,omitempty"`
	Captures    map[int]string `yaml:"captures,omitempty"`
	Push        string         `yaml:"push,omitempty"`
	Pop         bool           `yaml:"pop,omitempty"`
	Set         string         `yaml:"set,omitempty"`
	Embed       string         `yaml:"embed,omitempty"`
	EmbedScope  string         `yaml:"embed_scope,omitempty"`
	Escape      string         `yaml:"escape,omitempty"`
	BranchPoint string         `yaml:"branch_point,omitempty"`
	Branch      []string       `yaml:"branch,omitempty"`
	Fail        string         `yaml:"fail,omitempty"`
}

// Marshal serializes the document, header included, exactly as the writer
// persists it. Exposed so tests can assert byte-level determinism.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalYAML renders the document as an ordered mapping.
func (d *Document) MarshalYAML() (interface{}, error) {
	root := mapping{}
	root = root.add("name", d.Name)
	if len(d.FileExtensions) > 0 {
		root = root.add("file_extensions", d.FileExtensions)
	}
	root = root.add("scope", d.Scope)
	if d.Hidden {
		root = root.add("hidden", true)
	}
	root = root.add("main", d.Main)

	contexts := mapping{}
	for _, nc := range d.Contexts {
		contexts = contexts.add(nc.Name, nc.Context)
	}
	return root.add("contexts", contexts), nil
}

// MarshalYAML renders a context as the engine's sequence form: meta entries
// first, then the rules in authored order.
func (c *Context) MarshalYAML() (interface{}, error) {
	items := make([]interface{}, 0, len(c.Rules)+3)
	if c.MetaScope != "" {
		items = append(items, mapping{}.add("meta_scope", c.MetaScope))
	}
	if c.MetaContentScope != "" {
		items = append(items, mapping{}.add("meta_content_scope", c.MetaContentScope))
	}
	if c.MetaIncludePrototype != nil {
		items = append(items, mapping{}.add("meta_include_prototype", *c.MetaIncludePrototype))
	}
	for _, r := range c.Rules {
		items = append(items, r)
	}
	return items, nil
}

// mapping is an order-preserving YAML mapping.
type mapping []mappingEntry

type mappingEntry struct {
	key   string
	value interface{}
}

func (m mapping) add(key string, value interface{}) mapping {
	return append(m, mappingEntry{key: key, value: value})
}

// MarshalYAML builds the mapping node entry by entry, keeping insertion
// order.
func (m mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range m {
		keyNode := &yaml.Node{}
		keyNode.SetString(entry.key)

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(entry.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}
