package mcp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Minimal JSON-RPC 2.0 types

const (
	CodeParseError       = -32700
	CodeInvalidRequest   = -32600
	CodeMethodNotFound   = -32601
	CodeInvalidParams    = -32602
	CodeInternalError    = -32603
	CodeResourceNotFound = -32002
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id and so expects
// no response.
func (r *Request) IsNotification() bool { return len(r.ID) == 0 }

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string { return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message) }

func NewError(code int, message string) *Error { return &Error{Code: code, Message: message} }

// InvalidParams builds a -32602 error. data may be nil.
func InvalidParams(message string, data any) *Error {
	return &Error{Code: CodeInvalidParams, Message: message, Data: data}
}

// ResourceNotFound builds a -32002 error. data may be nil.
func ResourceNotFound(message string, data any) *Error {
	return &Error{Code: CodeResourceNotFound, Message: message, Data: data}
}

// errFrame wraps a line that could not be decoded as a request.
type errFrame struct{ err error }

func (e *errFrame) Error() string { return fmt.Sprintf("invalid json-rpc frame: %v", e.err) }
func (e *errFrame) Unwrap() error { return e.err }

// readNDJSON reads one JSON value per line (NDJSON framing). Blank lines are
// skipped.
func readNDJSON(r *bufio.Reader) (*Request, error) {
	for {
		line, err := r.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}
		var req Request
		if jerr := json.Unmarshal(line, &req); jerr != nil {
			return nil, &errFrame{err: jerr}
		}
		return &req, nil
	}
}

func writeNDJSON(w io.Writer, resp *Response) error {
	resp.JSONRPC = "2.0"
	if len(resp.ID) == 0 {
		resp.ID = json.RawMessage("null")
	}
	enc, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(enc, '\n')); err != nil {
		return err
	}
	return nil
}

// DecodeParams unmarshals raw params into dst. Empty params are an error.
func DecodeParams[T any](raw []byte, dst *T) *Error {
	if len(raw) == 0 {
		return InvalidParams("missing params", nil)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return InvalidParams("invalid params", nil)
	}
	return nil
}
