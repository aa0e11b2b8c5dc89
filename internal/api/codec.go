// Package api defines the Connect RPC surface of the server: request and
// response messages, procedure names, and handler and client constructors
// for each service.
//
// Messages are plain Go structs encoded as JSON. Every constructor installs
// Codec, so handlers and clients created here speak the Connect protocol with
// Content-Type application/json.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Codec encodes messages as JSON with encoding/json. It replaces Connect's
// default "json" codec, which only accepts protobuf messages.
type Codec struct{}

var _ connect.Codec = Codec{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, msg any) error { return json.Unmarshal(data, msg) }

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
}

// serviceHandler routes requests under one service path to their procedure.
type serviceHandler map[string]http.Handler

func (h serviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := h[r.URL.Path]; ok {
		handler.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

func servicePath(name string) string {
	return "/" + name + "/"
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
