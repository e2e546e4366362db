// Package schema defines the boundary between an OCF header's
// avro.schema metadata and the ocf.ValueCodec that drives per-record
// decoding, plus one trivial Loader grounded in avrotype's primitive
// types. It intentionally does not parse Avro schema documents: schema
// resolution and evolution are out of scope, per this module's
// Non-goals.
package schema

import (
	"fmt"
	"strings"

	"github.com/ocflib/ocf"
	"github.com/ocflib/ocf/avrotype"
)

// Schema describes a parsed schema well enough to produce the
// ValueCodec that reads and writes values conforming to it, and to
// name itself for diagnostics. Real schema engines implement this
// around a parsed document; TypeName below implements it around a
// bare type name.
type Schema interface {
	// Name returns the schema's type name, as it appeared in the
	// schema text.
	Name() string
	// Codec returns the ValueCodec driving records of this schema.
	Codec() ocf.ValueCodec
}

// Loader resolves schema text — the bytes stored in a header's
// avro.schema metadata — into a Schema. This is a richer boundary
// than ocf.SchemaLoader (which a Loader can be adapted to via
// AsValueCodecLoader): it keeps the parsed Schema around for callers
// that want more than just the resulting ValueCodec.
type Loader interface {
	Load(schemaText []byte) (Schema, error)
}

// AsValueCodecLoader adapts a Loader to ocf.SchemaLoader, the
// narrower interface ocf.DecoderOpts.Loader actually accepts.
func AsValueCodecLoader(l Loader) ocf.SchemaLoader {
	return valueCodecLoader{l}
}

type valueCodecLoader struct{ loader Loader }

func (v valueCodecLoader) Load(schemaText []byte) (ocf.ValueCodec, error) {
	s, err := v.loader.Load(schemaText)
	if err != nil {
		return nil, err
	}
	return s.Codec(), nil
}

// TypeName is the trivial Loader this package ships: it treats schema
// text as a bare, whitespace-trimmed Avro primitive type name —
// "long", "string", "bytes", or one of the two spellings of the
// string-to-bytes map (`map<string,bytes>`,
// `{"type":"map","values":"bytes"}`) — and resolves it against
// avrotype's reference ValueCodecs. Anything else is a
// SchemaParse-worthy error, left for the caller to wrap.
type TypeName struct{}

// typeNameSchema adapts one avrotype ValueCodec to the Schema
// interface.
type typeNameSchema struct {
	name  string
	codec ocf.ValueCodec
}

func (s typeNameSchema) Name() string          { return s.name }
func (s typeNameSchema) Codec() ocf.ValueCodec { return s.codec }

// Load implements Loader.
func (TypeName) Load(schemaText []byte) (Schema, error) {
	name := trimQuotes(schemaText)
	switch name {
	case "long":
		return typeNameSchema{name, avrotype.Long{}}, nil
	case "string":
		return typeNameSchema{name, avrotype.String{}}, nil
	case "bytes":
		return typeNameSchema{name, avrotype.Bytes{}}, nil
	case `map<string,bytes>`, `{"type":"map","values":"bytes"}`:
		return typeNameSchema{name, avrotype.StringBytesMap{}}, nil
	default:
		return nil, fmt.Errorf("schema: unrecognized type name %q", name)
	}
}

func trimQuotes(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
