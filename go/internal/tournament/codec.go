package tournament

import "encoding/json"

// jsonCodec replaces connect's protobuf-only "json" codec so plain Go structs
// can travel over the Connect protocol.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
