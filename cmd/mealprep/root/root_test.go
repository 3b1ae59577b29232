package root

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with flags reset to their defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWithInput(t, "", args...)
}

func executeWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{"MEALPREP_PLANNER_DEFAULT_DAYS", "MEALPREP_PLANNER_DEFAULT_SERVINGS", "MEALPREP_CATALOG_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	chdir(t, dir)
	return dir
}

func TestCuisinesCommand(t *testing.T) {
	isolate(t)
	out, err := execute(t, "cuisines", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "Available cuisines: Chinese, French, Italian, Mexican, Thai, Vietnamese\n", out)
}

func TestPlanCommand(t *testing.T) {
	dir := isolate(t)
	cfg := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[planner]\ndefault_days = 2\ndefault_servings = 1\n"), 0o644))

	out, err := execute(t, "plan", "Italian", "--raw", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "- **Dinner:**"))
	assert.NotContains(t, out, "(serves")

	out, err = execute(t, "plan", "Italian", "--raw", "--config", cfg, "--days", "3", "--servings", "5")
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "- **Dinner:**"))
	assert.Contains(t, out, "(serves 5)")

	_, err = execute(t, "plan", "Italian", "--raw", "--days", "0")
	assert.ErrorContains(t, err, "days must be at least 1")
}

func TestOneShotErrors(t *testing.T) {
	isolate(t)

	_, err := execute(t, "recipes", "Martian")
	assert.ErrorContains(t, err, "Unknown cuisine: Martian")

	_, err = execute(t, "overlap")
	assert.Error(t, err)

	_, err = execute(t, "cuisines", "--provider", "nope")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "config", "init", "--local", "--name", "kitchen")
	require.NoError(t, err)
	path := filepath.Join(dir, "mealprep.toml")
	assert.Contains(t, out, "Created ")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `name = "kitchen"`)

	_, err = execute(t, "config", "init", "--local")
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--local", "--force")
	require.NoError(t, err)

	out, err = execute(t, "overlap", "Vietnamese", "--raw", "--provider", "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "- 1 tbsp sugar (used in 2 recipes)")
}

func TestConfigInitHome(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".config", "mealprep", "mealprep.toml"))
}

func TestServeCommand(t *testing.T) {
	isolate(t)
	out, err := executeWithInput(t,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"analyze_ingredient_overlap","arguments":{"cuisine":"Italian"}}}`+"\n",
		"serve")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(out, "\n"), out)
	assert.True(t, strings.HasPrefix(out, `{"jsonrpc":"2.0","id":1,"result":`), out)
	assert.Contains(t, out, "Salt (used in 2 recipes)")
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (stand-in for testing.T.Chdir on Go < 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
