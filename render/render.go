// Package render writes query results as JSON, YAML or XML.
//
// Records keep their attribute order in every format. XML follows the
// ActiveRecord to_xml layout: one element per attribute, with type="integer",
// type="float", type="boolean" or type="array" on non-string values and
// nil="true" on nulls.
package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"

	json "github.com/goccy/go-json"
	"github.com/hupe1980/frozen/record"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	XML  Format = "xml"
)

// ParseFormat accepts json, yaml (or yml) and xml, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "xml":
		return XML, nil
	default:
		return "", fmt.Errorf("render: unknown format %q", s)
	}
}

// Encode writes records in the given format.
func Encode(w io.Writer, f Format, records []*record.Record) error {
	switch f {
	case JSON:
		return writeJSON(w, records)
	case YAML:
		return writeYAML(w, records)
	case XML:
		return writeXML(w, "records", func(enc *xml.Encoder) error {
			for _, r := range records {
				if err := writeElement(enc, "record", record.Map(r.Attributes())); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return fmt.Errorf("render: unknown format %q", f)
	}
}

// Values writes plucked values. rows[i][j] is the value of fields[j] in the
// i-th record. A single field renders as a flat list.
func Values(w io.Writer, f Format, fields []string, rows [][]record.Value) error {
	var flat []record.Value
	if len(fields) == 1 {
		flat = make([]record.Value, len(rows))
		for i, row := range rows {
			flat[i] = row[0]
		}
	}

	switch f {
	case JSON:
		if flat != nil {
			return writeJSON(w, flat)
		}
		return writeJSON(w, rows)
	case YAML:
		if flat != nil {
			return writeYAML(w, flat)
		}
		return writeYAML(w, rows)
	case XML:
		if flat != nil {
			return writeXML(w, "values", func(enc *xml.Encoder) error {
				for _, v := range flat {
					if err := writeElement(enc, "value", v); err != nil {
						return err
					}
				}
				return nil
			})
		}
		return writeXML(w, "rows", func(enc *xml.Encoder) error {
			for _, row := range rows {
				fieldsOf := make([]record.Field, len(fields))
				for j, name := range fields {
					fieldsOf[j] = record.F(name, row[j])
				}
				if err := writeElement(enc, "row", record.Map(record.NewAttributes(fieldsOf...))); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		return fmt.Errorf("render: unknown format %q", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func writeXML(w io.Writer, root string, body func(*xml.Encoder) error) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: root}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := body(enc); err != nil {
		return err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeElement(enc *xml.Encoder, name string, v record.Value) error {
	start := xml.StartElement{Name: xml.Name{Local: elementName(name)}}

	switch v.Kind {
	case record.KindInt:
		start.Attr = typeAttr("integer")
	case record.KindFloat:
		start.Attr = typeAttr("float")
	case record.KindBool:
		start.Attr = typeAttr("boolean")
	case record.KindArray:
		start.Attr = typeAttr("array")
	case record.KindNull, record.KindInvalid:
		start.Attr = []xml.Attr{{Name: xml.Name{Local: "nil"}, Value: "true"}}
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	switch v.Kind {
	case record.KindArray:
		for _, elem := range v.A {
			if err := writeElement(enc, "value", elem); err != nil {
				return err
			}
		}
	case record.KindMap:
		attrs, _ := v.AsMap()
		for field, fv := range attrs.All() {
			if err := writeElement(enc, field, fv); err != nil {
				return err
			}
		}
	case record.KindNull, record.KindInvalid:
	default:
		if err := enc.EncodeToken(xml.CharData(v.String())); err != nil {
			return err
		}
	}

	return enc.EncodeToken(start.End())
}

func typeAttr(t string) []xml.Attr {
	return []xml.Attr{{Name: xml.Name{Local: "type"}, Value: t}}
}

// elementName maps a field name to a valid XML element name.
func elementName(name string) string {
	if name == "" {
		return "_"
	}
	var sb strings.Builder
	for i, r := range name {
		valid := r == '_' || unicode.IsLetter(r) || (i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)))
		if !valid {
			if i == 0 && unicode.IsDigit(r) {
				sb.WriteByte('_')
				sb.WriteRune(r)
				continue
			}
			r = '_'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
