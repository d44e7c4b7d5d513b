package codegen

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/flamekit/flamekit/internal/compiler/ast"
	"github.com/flamekit/flamekit/internal/compiler/errors"
	"github.com/flamekit/flamekit/internal/compiler/metadata"
	"github.com/flamekit/flamekit/internal/compiler/transform"
)

// DocumentVersion is the schema version of Document
const DocumentVersion = 1

// Document is the machine-readable form of a unit's output
type Document struct {
	Version  int              `json:"version"`
	Classes  []ClassDocument  `json:"classes"`
	Warnings errors.ErrorList `json:"warnings,omitempty"`
}

// ClassDocument is one class of a Document
type ClassDocument struct {
	Name      string           `json:"name"`
	File      string           `json:"file"`
	Rewritten bool             `json:"rewritten"`
	Source    string           `json:"source"`
	Guards    []GuardDocument  `json:"guards,omitempty"`
	Metadata  []RecordDocument `json:"metadata"`
}

// GuardDocument is a named validator
type GuardDocument struct {
	Key  string `json:"key"`
	Expr string `json:"expr"`
}

// RecordDocument is one metadata registration
type RecordDocument struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// NewDocument builds the document for out. Class sources are printed
// without registration statements.
func NewDocument(out *transform.Output) (*Document, error) {
	if out == nil {
		return nil, fmt.Errorf("output cannot be nil")
	}

	e := NewEmitter("")
	doc := &Document{
		Version:  DocumentVersion,
		Classes:  make([]ClassDocument, 0, len(out.Classes)),
		Warnings: out.Warnings,
	}
	for _, c := range out.Classes {
		e.reset()
		e.writeClass(c.Class)

		cd := ClassDocument{
			Name:      c.Class.Name(),
			File:      c.File,
			Rewritten: c.Rewritten,
			Source:    e.buf.String(),
			Metadata:  make([]RecordDocument, 0, len(c.Records)),
		}
		for _, g := range c.Guards {
			cd.Guards = append(cd.Guards, GuardDocument{Key: g.Key, Expr: g.Expr.String()})
		}
		for _, r := range c.Records {
			raw, err := MarshalValue(r.Value)
			if err != nil {
				return nil, fmt.Errorf("failed to encode %s of %s: %w", r.Key, cd.Name, err)
			}
			cd.Metadata = append(cd.Metadata, RecordDocument{Key: r.Key, Value: raw})
		}
		doc.Classes = append(doc.Classes, cd)
	}
	return doc, nil
}

// JSON serializes the output of a unit. The output is deterministic.
func JSON(out *transform.Output) ([]byte, error) {
	doc, err := NewDocument(out)
	if err != nil {
		return nil, err
	}
	return Serialize(doc)
}

// Serialize converts a document to indented JSON
func Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return data, nil
}

// MarshalValue encodes a metadata value. Object keys keep their order.
// Author literals are written as JSON literals, other author expressions
// as {"$expr": source} and validators as {"$guard": source}.
func MarshalValue(v metadata.Value) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v metadata.Value) error {
	switch v := v.(type) {
	case metadata.String:
		return writeJSON(buf, v.Value)
	case metadata.Bool:
		return writeJSON(buf, v.Value)
	case *metadata.List:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case *metadata.Object:
		buf.WriteByte('{')
		for i, entry := range v.Entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, entry.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeValue(buf, entry.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case metadata.Raw:
		if lit, ok := v.Expr.(*ast.LiteralExpr); ok {
			switch lit.Value.(type) {
			case string, float64, bool, nil:
				return writeJSON(buf, lit.Value)
			}
		}
		return writeJSON(buf, map[string]string{"$expr": v.String()})
	case metadata.Guard:
		return writeJSON(buf, map[string]string{"$guard": v.String()})
	default:
		return fmt.Errorf("unsupported metadata value %T", v)
	}
}

func writeJSON(buf *bytes.Buffer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

// Compress compresses data using gzip at the best compression level
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}
	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data
func Decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}
	if len(data) == 0 {
		return []byte{}, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close()
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}
	return decompressed, nil
}

// WriteFile writes data to outputPath, creating parent directories. When
// compress is set the data is gzipped first.
func WriteFile(outputPath string, data []byte, compress bool) error {
	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if compress {
		compressed, err := Compress(data)
		if err != nil {
			return err
		}
		data = compressed
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
