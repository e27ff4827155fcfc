package knownbad

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a known-bad source.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultSource names the embedded list in errors and reports.
const DefaultSource = "builtin"

// ProjectFiles are the project-local list names looked up in a scanned root, in order.
var ProjectFiles = []string{"known-bad.json", "known-bad.yaml", "known-bad.yml"}

//go:embed data/known-bad.json
var defaultList []byte

// FormatFor picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes data in the given format and validates it with FromObject.
func Parse(data []byte, format Format) (*Registry, error) {
	obj, err := decode(data, format)
	if err != nil {
		return nil, configErr("cannot parse data", err)
	}
	return FromObject(obj)
}

// LoadFile reads and parses the list at path.
func LoadFile(fs afero.Fs, path string) (*Registry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, &ConfigurationError{Source: path, Reason: "cannot read file", Err: err}
	}
	reg, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, withSource(err, path)
	}
	return reg, nil
}

// Default returns the embedded known-bad list.
func Default() (*Registry, error) {
	reg, err := Parse(defaultList, FormatJSON)
	if err != nil {
		return nil, withSource(err, DefaultSource)
	}
	return reg, nil
}

// Resolve loads the list named by explicit when set. Otherwise it uses the
// first ProjectFiles entry present under root, and finally the embedded list.
// It returns the registry and a description of where it came from.
func Resolve(fs afero.Fs, explicit, root string) (*Registry, string, error) {
	if explicit != "" {
		reg, err := LoadFile(fs, explicit)
		return reg, explicit, err
	}
	for _, name := range ProjectFiles {
		path := filepath.Join(root, name)
		if ok, _ := afero.Exists(fs, path); ok {
			reg, err := LoadFile(fs, path)
			return reg, path, err
		}
	}
	reg, err := Default()
	return reg, DefaultSource, err
}

func withSource(err error, source string) error {
	if ce, ok := err.(*ConfigurationError); ok && ce.Source == "" {
		ce.Source = source
	}
	return err
}

func decode(data []byte, format Format) (any, error) {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var obj any
		if err := dec.Decode(&obj); err != nil {
			return nil, err
		}
		if dec.More() {
			return nil, fmt.Errorf("unexpected data after top-level value")
		}
		return obj, nil
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return fromYAML(&doc)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// fromYAML converts a node tree to the same shapes encoding/json produces,
// keeping numeric scalars as their literal text.
func fromYAML(n *yaml.Node) (any, error) {
	switch n.Kind {
	case 0:
		return nil, nil
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromYAML(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int", "!!float":
			return json.Number(n.Value), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return nil, err
			}
			return b, nil
		case "!!null":
			return nil, nil
		default:
			return n.Value, nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}
