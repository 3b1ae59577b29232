package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubProvider struct {
	calls []string
}

func (s *stubProvider) Name() string               { return "stub" }
func (s *stubProvider) Capabilities() Capabilities { return Capabilities{Tools: true} }
func (s *stubProvider) Instructions() string       { return "be nice" }

func (s *stubProvider) Handle(method string, params []byte) (any, *Error) {
	s.calls = append(s.calls, method)
	switch method {
	case "tools/list":
		return map[string]any{"tools": []any{}}, nil
	case "echo":
		var in map[string]any
		if err := DecodeParams(params, &in); err != nil {
			return nil, err
		}
		return in, nil
	default:
		return nil, NewError(CodeMethodNotFound, "method not found")
	}
}

type rpcReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

func serveLines(t *testing.T, p Provider, lines ...string) []rpcReply {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, NewServer(p, WithVersion("9.9.9")).Serve(context.Background(), in, &out))

	var replies []rpcReply
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r rpcReply
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r), sc.Text())
		replies = append(replies, r)
	}
	return replies
}

func TestServeInitialize(t *testing.T) {
	replies := serveLines(t, &stubProvider{},
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
	)
	require.Len(t, replies, 1)
	assert.Equal(t, "2.0", replies[0].JSONRPC)
	assert.JSONEq(t, `1`, string(replies[0].ID))
	assert.JSONEq(t, `{
		"protocolVersion": "2024-11-05",
		"serverInfo": {"name": "stub", "version": "9.9.9"},
		"capabilities": {"tools": {}},
		"instructions": "be nice"
	}`, string(replies[0].Result))
}

func TestServeDispatch(t *testing.T) {
	p := &stubProvider{}
	replies := serveLines(t, p,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":"a","method":"ping"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"echo","params":{"x":1}}`,
		`{"jsonrpc":"2.0","id":4,"method":"echo"}`,
		`{"jsonrpc":"2.0","id":5,"method":"nope"}`,
		`{not json`,
		`{"jsonrpc":"2.0","id":6}`,
		`{"jsonrpc":"2.0","method":"tools/list"}`,
	)
	require.Len(t, replies, 7)

	assert.JSONEq(t, `"a"`, string(replies[0].ID))
	assert.JSONEq(t, `{}`, string(replies[0].Result))

	assert.JSONEq(t, `{"tools":[]}`, string(replies[1].Result))
	assert.JSONEq(t, `{"x":1}`, string(replies[2].Result))

	require.NotNil(t, replies[3].Error)
	assert.Equal(t, CodeInvalidParams, replies[3].Error.Code)

	require.NotNil(t, replies[4].Error)
	assert.Equal(t, CodeMethodNotFound, replies[4].Error.Code)

	require.NotNil(t, replies[5].Error)
	assert.Equal(t, CodeParseError, replies[5].Error.Code)

	require.NotNil(t, replies[6].Error)
	assert.Equal(t, CodeInvalidRequest, replies[6].Error.Code)

	// The trailing notification still reaches the provider but gets no reply.
	assert.Equal(t, []string{"tools/list", "echo", "echo", "nope", "tools/list"}, p.calls)
}

func TestServeNotificationMethodWithID(t *testing.T) {
	p := &stubProvider{}
	replies := serveLines(t, p,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":5,"method":"notifications/foo"}`,
	)
	require.Len(t, replies, 1)
	assert.JSONEq(t, `5`, string(replies[0].ID))
	require.NotNil(t, replies[0].Error)
	assert.Equal(t, CodeMethodNotFound, replies[0].Error.Code)
	assert.Equal(t, []string{"notifications/foo"}, p.calls)
}

func TestServeStopsOnShutdown(t *testing.T) {
	p := &stubProvider{}
	replies := serveLines(t, p,
		`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
	)
	require.Len(t, replies, 1)
	assert.JSONEq(t, `{"status":"bye"}`, string(replies[0].Result))
	assert.Empty(t, p.calls)
}

func TestServeLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	in := strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	require.NoError(t, NewServer(&stubProvider{}).Serve(context.Background(), in, &out))
	assert.Contains(t, out.String(), `"id":7`)
}

func TestServeContextCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- NewServer(&stubProvider{}).Serve(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestServeWriteError(t *testing.T) {
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	err := NewServer(&stubProvider{}).Serve(context.Background(), in, failingWriter{})
	assert.EqualError(t, err, "broken pipe")
}

func TestManager(t *testing.T) {
	Register("stub", func(opts map[string]any) (Provider, error) {
		if opts["catalogPath"] == "/bad" {
			return nil, errors.New("boom")
		}
		return &stubProvider{}, nil
	})
	assert.Contains(t, Registered(), "stub")

	m := NewManager()
	_, err := m.Default()
	assert.ErrorIs(t, err, ErrProviderNotFound)

	cfg := &config.Config{MCP: config.MCPConfig{Servers: []config.MCPServerEntry{
		{Name: "zeta", Provider: "stub"},
		{Name: "alpha", Provider: "stub"},
	}}}
	require.NoError(t, m.LoadFromConfig(cfg))
	assert.Equal(t, []string{"alpha", "zeta"}, m.List())

	def, err := m.Default()
	require.NoError(t, err)
	zeta, err := m.Provider("zeta")
	require.NoError(t, err)
	assert.Same(t, zeta, def)

	_, err = m.Provider("missing")
	assert.ErrorIs(t, err, ErrProviderNotFound)

	assert.Error(t, m.LoadFromConfig(cfg), "duplicate names are rejected")
	assert.ErrorContains(t, NewManager().LoadFromConfig(&config.Config{MCP: config.MCPConfig{
		Servers: []config.MCPServerEntry{{Name: "x", Provider: "unknown"}},
	}}), "unknown provider")
	assert.ErrorContains(t, NewManager().LoadFromConfig(&config.Config{MCP: config.MCPConfig{
		Servers: []config.MCPServerEntry{{Name: "x", Provider: "stub", Catalog: "/bad"}},
	}}), "boom")
}
