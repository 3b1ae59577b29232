package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/sirupsen/logrus"

	"github.com/hisgarden/mcp-server-meal-prep/internal/config"
	mcp "github.com/hisgarden/mcp-server-meal-prep/internal/mcp"
	_ "github.com/hisgarden/mcp-server-meal-prep/internal/providers/recipes" // register recipes provider via init
)

const defaultWidth = 80

type App struct {
	cfg      *config.Config
	mcpMgr   *mcp.Manager
	provider string
	out      io.Writer
	width    int
	raw      bool
}

type Option func(*App)

// WithOutput sets where rendered results are written.
func WithOutput(w io.Writer) Option { return func(a *App) { a.out = w } }

// WithProvider selects a configured server entry by name instead of the first one.
func WithProvider(name string) Option { return func(a *App) { a.provider = name } }

// WithWidth sets the terminal rendering width.
func WithWidth(n int) Option {
	return func(a *App) {
		if n > 0 {
			a.width = n
		}
	}
}

// WithRaw disables terminal rendering; markdown is printed as is.
func WithRaw(raw bool) Option { return func(a *App) { a.raw = raw } }

func New(cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg, mcpMgr: mcp.NewManager(), out: io.Discard, width: defaultWidth}
	for _, o := range opts {
		o(a)
	}
	if err := a.mcpMgr.LoadFromConfig(cfg); err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	logrus.WithFields(logrus.Fields{"providers": a.mcpMgr.List(), "catalog": cfg.Catalog.Path}).Debug("app ready")
	return a, nil
}

// Config returns the configuration the app was built from.
func (a *App) Config() *config.Config { return a.cfg }

// Provider returns the selected provider.
func (a *App) Provider() (mcp.Provider, error) {
	if a.provider != "" {
		return a.mcpMgr.Provider(a.provider)
	}
	return a.mcpMgr.Default()
}

// Serve runs the selected provider as an MCP server over r and w until EOF,
// shutdown or cancellation.
func (a *App) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	p, err := a.Provider()
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"provider": p.Name(), "version": a.cfg.Server.Version}).Info("starting MCP server")
	return mcp.NewServer(p, mcp.WithVersion(a.cfg.Server.Version)).Serve(ctx, r, w)
}

func (a *App) Cuisines() error {
	return a.run("get_cuisines", map[string]any{})
}

func (a *App) Recipes(cuisine string) error {
	return a.run("get_recipes", map[string]any{"cuisine": cuisine})
}

func (a *App) Plan(cuisine string, days, servings int) error {
	return a.run("generate_meal_plan", map[string]any{"cuisine": cuisine, "days": days, "servings": servings})
}

func (a *App) WeeklyPlan(cuisine string) error {
	return a.run("weekly_meal_planner", map[string]any{"cuisine": cuisine})
}

func (a *App) Overlap(cuisine string) error {
	return a.run("analyze_ingredient_overlap", map[string]any{"cuisine": cuisine})
}

// Shell reads ":" commands line by line from in until EOF or ":quit".
func (a *App) Shell(ctx context.Context, in io.Reader) error {
	fmt.Fprint(a.out, "> ")
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == ":quit" || line == ":q" {
			return nil
		}
		if line != "" && !a.handleLocalCommand(line) {
			fmt.Fprintf(a.out, "unknown command %q (try :help)\n", line)
		}
		fmt.Fprint(a.out, "> ")
	}
	return sc.Err()
}

// Local ":" commands
func (a *App) handleLocalCommand(line string) bool {
	fields := strings.Fields(line)
	cmd := strings.TrimPrefix(strings.ToLower(fields[0]), ":")
	args := fields[1:]

	var err error
	switch cmd {
	case "help":
		fmt.Fprintln(a.out, "Commands:\n  :cuisines\n  :recipes <cuisine>\n  :plan <cuisine> [days=N] [servings=N]\n  :week <cuisine>\n  :overlap <cuisine>\n  :quit")
		return true
	case "cuisines":
		err = a.Cuisines()
	case "recipes", "week", "overlap":
		if len(args) < 1 {
			fmt.Fprintf(a.out, "Usage: :%s <cuisine>\n", cmd)
			return true
		}
		switch cmd {
		case "recipes":
			err = a.Recipes(args[0])
		case "week":
			err = a.WeeklyPlan(args[0])
		default:
			err = a.Overlap(args[0])
		}
	case "plan":
		if len(args) < 1 {
			fmt.Fprintln(a.out, "Usage: :plan <cuisine> [days=N] [servings=N]")
			return true
		}
		days, servings := a.cfg.Planner.DefaultDays, a.cfg.Planner.DefaultServings
		for _, tok := range args[1:] {
			key, val, ok := strings.Cut(tok, "=")
			n, convErr := strconv.Atoi(val)
			if !ok || convErr != nil {
				fmt.Fprintf(a.out, "bad option %q\n", tok)
				return true
			}
			switch key {
			case "days":
				days = n
			case "servings":
				servings = n
			default:
				fmt.Fprintf(a.out, "bad option %q\n", tok)
				return true
			}
		}
		err = a.Plan(args[0], days, servings)
	default:
		return false
	}
	if err != nil {
		fmt.Fprintf(a.out, "%s error: %v\n", cmd, err)
	}
	return true
}

// run calls a tool on the selected provider and prints its text.
func (a *App) run(tool string, args map[string]any) error {
	start := time.Now()
	text, err := a.callTool(tool, args)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{"tool": tool, "args": args, "chars": len(text), "elapsed": time.Since(start)}).Debug("tool result")
	if a.raw {
		_, err = fmt.Fprintln(a.out, text)
		return err
	}
	_, err = fmt.Fprintln(a.out, string(markdown.Render(text, a.width, 2)))
	return err
}

func (a *App) callTool(name string, args map[string]any) (string, error) {
	p, err := a.Provider()
	if err != nil {
		return "", err
	}
	params, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		return "", err
	}
	res, perr := p.Handle("tools/call", params)
	if perr != nil {
		return "", describe(perr)
	}
	b, err := json.Marshal(res)
	if err != nil {
		return "", err
	}
	var out struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	parts := make([]string, 0, len(out.Content))
	for _, c := range out.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// describe prefers the human readable detail carried in error data.
func describe(e *mcp.Error) error {
	if data, ok := e.Data.(map[string]any); ok {
		if msg, ok := data["message"].(string); ok && msg != "" {
			return fmt.Errorf("%s: %s", e.Message, msg)
		}
	}
	return e
}
