package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-kratos/kratos/v2/encoding"
	// Registered first so that the codec below replaces it under "json".
	_ "github.com/go-kratos/kratos/v2/encoding/json"
	"github.com/gowebpki/jcs"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

const Name = "json"

const indent = "  "

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec is the kratos "json" codec used by serve mode. It writes the same
// canonical document the CLI prints, so HTTP and CLI output are identical.
type jsonCodec struct{}

var protoOpts = protojson.MarshalOptions{
	UseProtoNames: true,
}

// Marshal also handles proto messages, which is what kratos hands over for
// error bodies.
func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	if msg, ok := v.(proto.Message); ok {
		raw, err := protoOpts.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("marshal proto: %w", err)
		}
		return canonicalIndent(raw)
	}
	return MarshalJSON(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if msg, ok := v.(proto.Message); ok {
		return protojson.Unmarshal(data, msg)
	}
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return Name }

// MarshalJSON encodes v with RFC 8785 canonical key ordering and string
// escaping, indented by two spaces and terminated by a newline. Equal
// inputs always produce identical bytes.
func MarshalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return canonicalIndent(raw)
}

func canonicalIndent(raw []byte) ([]byte, error) {
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize json: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", indent); err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
