package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when a document that should hold attributes is
// not a mapping.
var ErrNotMapping = errors.New("record: document is not a mapping")

// MarshalJSON implements json.Marshaler. Nested mappings keep their order.
func (v Value) MarshalJSON() ([]byte, error) {
	return appendJSON(nil, v)
}

// MarshalJSON implements json.Marshaler, writing fields in declaration order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	return appendObject(nil, a)
}

func appendJSON(buf []byte, v Value) ([]byte, error) {
	switch v.Kind {
	case KindNull, KindInvalid:
		return append(buf, "null"...), nil
	case KindInt:
		return strconv.AppendInt(buf, v.I64, 10), nil
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return nil, fmt.Errorf("record: unsupported float value %v", v.F64)
		}
		format := byte('f')
		if abs := math.Abs(v.F64); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
			format = 'e'
		}
		return strconv.AppendFloat(buf, v.F64, format, -1, 64), nil
	case KindString:
		b, err := json.Marshal(v.s.Value())
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case KindBool:
		return strconv.AppendBool(buf, v.B), nil
	case KindArray:
		buf = append(buf, '[')
		for i := range v.A {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = appendJSON(buf, v.A[i]); err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case KindMap:
		if v.M == nil {
			return append(buf, "{}"...), nil
		}
		return appendObject(buf, *v.M)
	default:
		return nil, fmt.Errorf("record: cannot marshal kind %s", v.Kind)
	}
}

func appendObject(buf []byte, a Attributes) ([]byte, error) {
	buf = append(buf, '{')
	for i, f := range a.fields {
		if i > 0 {
			buf = append(buf, ',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf = append(buf, name...)
		buf = append(buf, ':')
		if buf, err = appendJSON(buf, f.Value); err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Object key order is preserved.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	if v.Kind != KindMap {
		return fmt.Errorf("%w: got %s", ErrNotMapping, v.Kind)
	}
	*a = *v.M
	return nil
}

// decodeJSON walks the token stream; map[string]any would lose key order.
func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("record: invalid number %q: %w", t, err)
		}
		return Float(f), nil
	case json.Delim:
		switch t {
		case '[':
			arr := []Value{}
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Array(arr), nil
		case '{':
			var attrs Attributes
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				name, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("record: unexpected object key %v", keyTok)
				}
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				attrs.set(name, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Map(attrs), nil
		}
	}
	return Value{}, fmt.Errorf("record: unexpected token %v", tok)
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.node(), nil
}

// MarshalYAML implements yaml.Marshaler, writing fields in declaration order.
func (a Attributes) MarshalYAML() (any, error) {
	return a.node(), nil
}

func (v Value) node() *yaml.Node {
	switch v.Kind {
	case KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.I64, 10)}
	case KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(v.F64)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s.Value()}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.B)}
	case KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i := range v.A {
			n.Content = append(n.Content, v.A[i].node())
		}
		return n
	case KindMap:
		if v.M == nil {
			return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		return v.M.node()
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func (a Attributes) node() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range a.fields {
		n.Content = append(n.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name},
			f.Value.node(),
		)
	}
	return n
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if _, ok := integral(f); ok && !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	out, err := fromNode(n)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Mapping order is preserved.
func (a *Attributes) UnmarshalYAML(n *yaml.Node) error {
	v, err := fromNode(n)
	if err != nil {
		return err
	}
	if v.Kind != KindMap {
		return fmt.Errorf("%w: line %d", ErrNotMapping, n.Line)
	}
	*a = *v.M
	return nil
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.SequenceNode:
		arr := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, item)
		}
		return Array(arr), nil
	case yaml.MappingNode:
		var attrs Attributes
		if err := mergeMapping(&attrs, n); err != nil {
			return Value{}, err
		}
		return Map(attrs), nil
	case yaml.ScalarNode:
		return fromScalar(n)
	default:
		return Value{}, fmt.Errorf("record: unsupported yaml node at line %d", n.Line)
	}
}

func mergeMapping(attrs *Attributes, n *yaml.Node) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, val := n.Content[i], n.Content[i+1]
		if k.ShortTag() == "!!merge" {
			src := val
			if src.Kind == yaml.AliasNode {
				src = src.Alias
			}
			var merged Attributes
			if err := mergeMapping(&merged, src); err != nil {
				return err
			}
			for _, f := range merged.fields {
				if !attrs.Has(f.Name) {
					attrs.set(f.Name, f.Value)
				}
			}
			continue
		}
		item, err := fromNode(val)
		if err != nil {
			return err
		}
		attrs.set(k.Value, item)
	}
	return nil
}

func fromScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	default:
		return String(n.Value), nil
	}
}
