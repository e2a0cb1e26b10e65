package nestjs

import (
	"fmt"

	"emperror.dev/errors"
	"google.golang.org/protobuf/compiler/protogen"
)

// StreamingMode is the streaming kind of an rpc.
type StreamingMode int

const (
	Unary StreamingMode = iota
	ServerStreaming
	ClientStreaming
	BidiStreaming
)

var modeNames = [...]string{
	Unary:           "unary",
	ServerStreaming: "server_streaming",
	ClientStreaming: "client_streaming",
	BidiStreaming:   "bidi_streaming",
}

func (m StreamingMode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("StreamingMode(%d)", int(m))
}

func ModeOf(m *protogen.Method) StreamingMode {
	switch client, server := m.Desc.IsStreamingClient(), m.Desc.IsStreamingServer(); {
	case client && server:
		return BidiStreaming
	case client:
		return ClientStreaming
	case server:
		return ServerStreaming
	default:
		return Unary
	}
}

// Shape describes whether the request and the response of an rpc are a
// sequence of messages or a single one.
type Shape struct {
	StreamingRequest  bool
	StreamingResponse bool
}

// Classify returns the request and response shape for mode. Modes other than
// the four known ones are rejected.
func Classify(mode StreamingMode) (Shape, error) {
	switch mode {
	case Unary:
		return Shape{}, nil
	case ServerStreaming:
		return Shape{StreamingResponse: true}, nil
	case ClientStreaming:
		return Shape{StreamingRequest: true, StreamingResponse: true}, nil
	case BidiStreaming:
		return Shape{StreamingRequest: true, StreamingResponse: true}, nil
	}
	return Shape{}, errors.WithDetails(errors.WithMessage(ErrUnknownStreamingMode, mode.String()), "mode", int(mode))
}

// Request renders the request type, Observable<In> or In.
func (s Shape) Request(in any) []any {
	if s.StreamingRequest {
		return []any{observable, "<", in, ">"}
	}
	return []any{in}
}

// Response renders the response type, Observable<Out> or Promise<Out>.
func (s Shape) Response(out any) []any {
	if s.StreamingResponse {
		return []any{observable, "<", out, ">"}
	}
	return []any{"Promise<", out, ">"}
}
