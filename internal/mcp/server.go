package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ProtocolVersion is the MCP revision advertised on initialize.
const ProtocolVersion = "2024-11-05"

// Capabilities mirrors the high-level MCP capabilities advertised by a provider.
type Capabilities struct {
	Resources bool
	Tools     bool
}

// MarshalJSON encodes each enabled capability as an empty object, which is
// how MCP clients expect them.
func (c Capabilities) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if c.Resources {
		out["resources"] = map[string]any{}
	}
	if c.Tools {
		out["tools"] = map[string]any{}
	}
	return json.Marshal(out)
}

// Instructor is implemented by providers that ship usage instructions for
// the client.
type Instructor interface {
	Instructions() string
}

type Server struct {
	provider Provider
	version  string
}

type Option func(*Server)

// WithVersion sets the version reported in serverInfo.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

func NewServer(p Provider, opts ...Option) *Server {
	s := &Server{provider: p, version: "0.1.0"}
	for _, o := range opts {
		o(s)
	}
	return s
}

type frame struct {
	req *Request
	err error
}

// Serve processes JSON-RPC (NDJSON) over r/w stdio. It returns nil on EOF or
// after a shutdown request, and ctx.Err() when ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	frames := make(chan frame)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(frames)
		br := bufio.NewReader(r)
		for {
			req, err := readNDJSON(br)
			select {
			case frames <- frame{req: req, err: err}:
			case <-done:
				return
			}
			var fe *errFrame
			if err != nil && !errors.As(err, &fe) {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if f.err != nil {
				var fe *errFrame
				if errors.As(f.err, &fe) {
					logrus.WithError(f.err).Warn("dropping malformed frame")
					if err := writeNDJSON(w, &Response{Error: NewError(CodeParseError, "parse error")}); err != nil {
						return err
					}
					continue
				}
				if errors.Is(f.err, io.EOF) {
					return nil
				}
				return f.err
			}
			stop, err := s.dispatch(w, f.req)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

func (s *Server) dispatch(w io.Writer, req *Request) (stop bool, err error) {
	start := time.Now()
	log := logrus.WithFields(logrus.Fields{"method": req.Method, "id": string(req.ID)})

	var (
		result any
		perr   *Error
	)
	switch {
	case req.Method == "":
		perr = NewError(CodeInvalidRequest, "invalid request")
	case req.Method == "initialize":
		result = s.initializeResult()
	case req.Method == "ping":
		result = map[string]any{}
	case req.Method == "shutdown":
		result = map[string]string{"status": "bye"}
		stop = true
	case strings.HasPrefix(req.Method, "notifications/") && req.IsNotification():
		log.Debug("notification received")
		return false, nil
	default:
		result, perr = s.provider.Handle(req.Method, req.Params)
	}

	if req.IsNotification() {
		return stop, nil
	}
	log = log.WithField("elapsed", time.Since(start))
	if perr != nil {
		log.WithField("code", perr.Code).Warn(perr.Message)
		return stop, writeNDJSON(w, &Response{ID: req.ID, Error: perr})
	}
	log.Debug("handled request")
	return stop, writeNDJSON(w, &Response{ID: req.ID, Result: result})
}

func (s *Server) initializeResult() map[string]any {
	result := map[string]any{
		"protocolVersion": ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    s.provider.Name(),
			"version": s.version,
		},
		"capabilities": s.provider.Capabilities(),
	}
	if in, ok := s.provider.(Instructor); ok {
		result["instructions"] = in.Instructions()
	}
	return result
}
