package ast

import (
	"bytes"
	"encoding/json"
)

// Encode renders nodes in the canonical JSON form accepted by Decode.
func Encode(nodes []Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeSeq(&buf, nodes); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeNode renders a single node as JSON. It is used to dump offending
// nodes in error messages.
func EncodeNode(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeNode(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeSeq(buf *bytes.Buffer, nodes []Node) error {
	buf.WriteByte('[')
	for i, n := range nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeNode(buf, n); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func encodeNode(buf *bytes.Buffer, n Node) error {
	if n == nil {
		buf.WriteString("null")
		return nil
	}

	if u, ok := n.(*Unknown); ok {
		fields := make(map[string]any, len(u.Fields)+1)
		for k, v := range u.Fields {
			fields[k] = v
		}
		fields["type"] = u.Type
		b, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		buf.Write(b)
		return nil
	}

	buf.WriteString(`{"type":`)
	writeString(buf, string(n.Kind()))

	switch v := n.(type) {
	case *Text:
		buf.WriteString(`,"content":`)
		writeString(buf, v.Content)
	case *Comment:
		buf.WriteString(`,"content":`)
		writeString(buf, v.Content)
	case *Tag:
		buf.WriteString(`,"name":`)
		writeString(buf, v.Name)
		if len(v.Attrs) > 0 {
			buf.WriteString(`,"attrs":{`)
			for i, a := range v.Attrs {
				if i > 0 {
					buf.WriteByte(',')
				}
				writeString(buf, a.Key)
				buf.WriteByte(':')
				if err := encodeSeq(buf, a.Value); err != nil {
					return err
				}
			}
			buf.WriteByte('}')
		}
		if v.Content != nil {
			buf.WriteString(`,"content":`)
			if err := encodeSeq(buf, v.Content); err != nil {
				return err
			}
		}
	case *Code:
		buf.WriteString(`,"content":`)
		writeString(buf, v.Content)
		if len(v.Nodes) > 0 {
			buf.WriteString(`,"nodes":[`)
			for i, tree := range v.Nodes {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := encodeSeq(buf, tree); err != nil {
					return err
				}
			}
			buf.WriteByte(']')
		}
	}

	if loc := n.Loc(); !loc.IsZero() {
		buf.WriteString(`,"location":`)
		b, _ := json.Marshal(map[string]int{"line": loc.Line, "col": loc.Column})
		buf.Write(b)
	}
	buf.WriteByte('}')
	return nil
}

// writeString writes s as a JSON string without HTML escaping, so dumps
// of markup stay readable.
func writeString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Truncate(buf.Len() - 1) // drop the encoder's trailing newline
}
