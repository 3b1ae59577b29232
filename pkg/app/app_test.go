package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Name: "mealprep", Version: "0.1.0"},
		Planner: config.PlannerConfig{DefaultDays: 3, DefaultServings: 2},
		MCP: config.MCPConfig{Servers: []config.MCPServerEntry{
			{Name: "recipes", Provider: "recipes"},
		}},
	}
}

func newRawApp(t *testing.T, opts ...Option) (*App, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a, err := New(testConfig(), append([]Option{WithOutput(&out), WithRaw(true)}, opts...)...)
	require.NoError(t, err)
	return a, &out
}

func TestOneShotCommands(t *testing.T) {
	a, out := newRawApp(t)

	require.NoError(t, a.Cuisines())
	assert.Equal(t, "Available cuisines: Chinese, French, Italian, Mexican, Thai, Vietnamese\n", out.String())

	out.Reset()
	require.NoError(t, a.Recipes("Italian"))
	assert.True(t, strings.HasPrefix(out.String(), "# Italian Recipes\n"))

	out.Reset()
	require.NoError(t, a.Plan("Italian", 2, 1))
	assert.Equal(t, 2, strings.Count(out.String(), "- **Dinner:**"))

	out.Reset()
	require.NoError(t, a.WeeklyPlan("Italian"))
	assert.Equal(t, 7, strings.Count(out.String(), "- **Dinner:**"))

	out.Reset()
	require.NoError(t, a.Overlap("Italian"))
	assert.Equal(t, "Common ingredients in Italian cuisine:\n\n- Salt (used in 2 recipes)\n\n", out.String())
}

func TestUnknownCuisineError(t *testing.T) {
	a, _ := newRawApp(t)
	err := a.Recipes("Martian")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_cuisine: Unknown cuisine: Martian")
}

func TestRenderedOutput(t *testing.T) {
	var out bytes.Buffer
	a, err := New(testConfig(), WithOutput(&out), WithWidth(60))
	require.NoError(t, err)

	require.NoError(t, a.Recipes("French"))
	assert.Contains(t, out.String(), "Coq au Vin")
	assert.NotContains(t, out.String(), "**Ingredients:**")
}

func TestProviderSelection(t *testing.T) {
	a, _ := newRawApp(t, WithProvider("missing"))
	_, err := a.Provider()
	assert.Error(t, err)
	assert.Error(t, a.Cuisines())

	cfg := testConfig()
	cfg.MCP.Servers = append(cfg.MCP.Servers, config.MCPServerEntry{Name: "recipes", Provider: "recipes"})
	_, err = New(cfg)
	assert.Error(t, err, "duplicate entries fail to load")
}

func TestShell(t *testing.T) {
	a, out := newRawApp(t)
	in := strings.NewReader(strings.Join([]string{
		":help",
		"",
		":cuisines",
		":plan Thai days=2 servings=3",
		":plan Thai weeks=2",
		":recipes",
		":overlap Mexican",
		":week Nope",
		"hello",
		":quit",
		":cuisines",
	}, "\n"))

	require.NoError(t, a.Shell(context.Background(), in))
	got := out.String()
	assert.Contains(t, got, ":plan <cuisine> [days=N] [servings=N]")
	// Command output follows the prompt on the same line.
	assert.Equal(t, 1, strings.Count(got, "> Available cuisines: Chinese"))
	assert.True(t, strings.HasSuffix(got, "unknown command \"hello\" (try :help)\n> "), "nothing runs after :quit")
	assert.Equal(t, 2, strings.Count(got, "- **Dinner:**"))
	assert.Contains(t, got, "(serves 3)")
	assert.Contains(t, got, `bad option "weeks=2"`)
	assert.Contains(t, got, "Usage: :recipes <cuisine>")
	assert.Contains(t, got, "No overlapping ingredients found in Mexican cuisine recipes.")
	assert.Contains(t, got, "week error: invalid_cuisine")
	assert.Contains(t, got, `unknown command "hello"`)
}

func TestShellCancelled(t *testing.T) {
	a, _ := newRawApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Shell(ctx, strings.NewReader(":cuisines\n")), context.Canceled)
}

func TestServe(t *testing.T) {
	a, _ := newRawApp(t)
	var out bytes.Buffer
	in := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_cuisines"}}` + "\n")
	require.NoError(t, a.Serve(context.Background(), in, &out))
	assert.Contains(t, out.String(), "Available cuisines: Chinese")
}
