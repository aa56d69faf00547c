// Package codec registers a JSON codec with gRPC. The service messages in
// internal/api are plain Go structs, so they travel as JSON rather than
// protobuf.
//
// Stock protobuf clients cannot call this server. A client must send
// content-type application/grpc+json with JSON bodies whose field names
// match the structs' json tags. Go clients get that with DialOption or
// CallOption.
package codec

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// Name is the gRPC content-subtype: application/grpc+json.
const Name = "json"

type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (Codec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (Codec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(Codec{})
}

// CallOption makes a client call use the JSON codec.
func CallOption() grpc.CallOption {
	return grpc.CallContentSubtype(Name)
}

// DialOption applies CallOption to every call on a connection.
func DialOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(CallOption())
}
