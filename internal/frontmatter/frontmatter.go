// Package frontmatter builds the YAML header block that starts every note.
package frontmatter

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gerunddev/wikivault/internal/normalize"
)

// Delimiter opens and closes the header block
const Delimiter = "---"

// Build renders the header for a note: title (display form), the
// normalized tags, then every extra field in order. Strings are always
// double-quoted so wikilinks and colons survive a YAML round trip.
// The block ends with a blank line.
func Build(title string, tags []string, extra *Fields) (string, error) {
	record := NewFields()
	record.Set("title", normalize.DisplayTitle(title))

	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized = append(normalized, normalize.Tag(tag))
	}
	record.Set("tags", normalized)

	for _, key := range extra.Keys() {
		value, _ := extra.Get(key)
		record.Set(key, value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(mappingNode(record)); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}

	return Delimiter + "\n" + buf.String() + Delimiter + "\n\n", nil
}

func mappingNode(f *Fields) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		node.Content = append(node.Content, keyNode(key), toNode(value))
	}
	return node
}

func keyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s, Style: yaml.DoubleQuotedStyle}
}

// toNode keeps strings, numbers, booleans, null, lists and records;
// anything else is written as its display string.
func toNode(value any) *yaml.Node {
	switch v := value.(type) {
	case nil:
		return scalar("!!null", "null")
	case string:
		return stringNode(v)
	case bool:
		return scalar("!!bool", strconv.FormatBool(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return scalar("!!int", fmt.Sprint(v))
	case float32:
		return floatNode(float64(v))
	case float64:
		return floatNode(v)
	case []string:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			seq.Content = append(seq.Content, stringNode(item))
		}
		return seq
	case []any:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v {
			seq.Content = append(seq.Content, toNode(item))
		}
		return seq
	case *Fields:
		return mappingNode(v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		nested := NewFields()
		for _, k := range keys {
			nested.Set(k, v[k])
		}
		return mappingNode(nested)
	default:
		return stringNode(fmt.Sprint(v))
	}
}

func floatNode(f float64) *yaml.Node {
	switch {
	case math.IsNaN(f):
		return scalar("!!float", ".nan")
	case math.IsInf(f, 1):
		return scalar("!!float", ".inf")
	case math.IsInf(f, -1):
		return scalar("!!float", "-.inf")
	}
	return scalar("!!float", strconv.FormatFloat(f, 'g', -1, 64))
}
