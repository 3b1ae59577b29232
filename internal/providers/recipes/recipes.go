package recipes

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hisgarden/mcp-server-meal-prep/internal/catalog"
	"github.com/hisgarden/mcp-server-meal-prep/internal/kitchen"
	mcp "github.com/hisgarden/mcp-server-meal-prep/internal/mcp"
	"github.com/hisgarden/mcp-server-meal-prep/internal/planner"
)

const (
	// URIPrefix is the canonical resource locator prefix; the cuisine name follows it.
	URIPrefix    = "file://recipes/"
	aliasPrefix  = "cuisine://"
	mimeMarkdown = "text/markdown"

	instructions = "This server provides meal preparation tools and recipes. " +
		"Tools: get_cuisines, get_recipes, generate_meal_plan, analyze_ingredient_overlap, weekly_meal_planner. " +
		"Resources: file://recipes/{cuisine} for cuisine-specific recipes."
)

// Provider serves the recipe catalog as MCP tools and resources.
type Provider struct {
	name            string
	kitchen         *kitchen.Kitchen
	defaultDays     int
	defaultServings int
}

// Registration
func init() {
	mcp.Register("recipes", func(opts map[string]any) (mcp.Provider, error) {
		return New(opts)
	})
}

// New builds a provider. Options: "catalog" (*catalog.Catalog), "catalogPath"
// (YAML file, used when no catalog is given), "serverName", "defaultDays",
// "defaultServings". Without a catalog the built-in one is served.
func New(opts map[string]any) (*Provider, error) {
	c := get[*catalog.Catalog](opts, "catalog", nil)
	if c == nil {
		if path := get[string](opts, "catalogPath", ""); path != "" {
			loaded, err := catalog.LoadFile(path)
			if err != nil {
				return nil, err
			}
			c = loaded
		} else {
			c = catalog.Default()
		}
	}
	p := &Provider{
		name:            get[string](opts, "serverName", "mealprep"),
		kitchen:         kitchen.New(c),
		defaultDays:     get[int](opts, "defaultDays", planner.DefaultDays),
		defaultServings: get[int](opts, "defaultServings", planner.DefaultServings),
	}
	logrus.WithFields(logrus.Fields{
		"name":     p.name,
		"cuisines": len(c.Cuisines()),
		"days":     p.defaultDays,
		"servings": p.defaultServings,
	}).Debug("recipes provider ready")
	return p, nil
}

func get[T any](m map[string]any, k string, def T) T {
	if v, ok := m[k]; ok {
		if cast, ok := v.(T); ok {
			return cast
		}
	}
	return def
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Capabilities() mcp.Capabilities {
	return mcp.Capabilities{Resources: true, Tools: true}
}

func (p *Provider) Instructions() string { return instructions }

// JSON helpers
type resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type listResourcesResult struct {
	Resources []resource `json:"resources"`
}

type resourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

type listResourceTemplatesResult struct {
	ResourceTemplates []resourceTemplate `json:"resourceTemplates"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type resourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type readResourceResult struct {
	Contents []resourceContents `json:"contents"`
}

type toolsListResult struct {
	Tools []toolDesc `json:"tools"`
}

type toolDesc struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type toolCallParams struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"arguments"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CallToolResult is the payload of a successful tools/call.
type CallToolResult struct {
	Content []textContent `json:"content"`
	IsError bool          `json:"isError"`
}

// Text joins the text parts of the result.
func (r *CallToolResult) Text() string {
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}

func textResult(text string) *CallToolResult {
	return &CallToolResult{Content: []textContent{{Type: "text", Text: text}}}
}

var tools = []toolDesc{
	{
		Name:        "get_cuisines",
		Description: "Get all available cuisines",
		InputSchema: schema(nil),
	},
	{
		Name:        "get_recipes",
		Description: "Get recipes for a specific cuisine",
		InputSchema: schema(map[string]string{"cuisine": "string"}),
	},
	{
		Name:        "generate_meal_plan",
		Description: "Generate a meal plan for a specific cuisine",
		InputSchema: schema(map[string]string{"cuisine": "string", "days?": "integer", "servings?": "integer"}),
	},
	{
		Name:        "analyze_ingredient_overlap",
		Description: "Get ingredient overlap analysis for meal planning",
		InputSchema: schema(map[string]string{"cuisine": "string"}),
	},
	{
		Name:        "weekly_meal_planner",
		Description: "Generate a comprehensive weekly meal plan with shopping list and preparation tips",
		InputSchema: schema(map[string]string{"cuisine": "string"}),
	},
}

// Provider entry
func (p *Provider) Handle(method string, params []byte) (any, *mcp.Error) {
	switch method {
	case "resources/list":
		names := p.kitchen.Cuisines()
		items := make([]resource, 0, len(names))
		for _, c := range names {
			items = append(items, resource{
				URI:         URIPrefix + c,
				Name:        c + " Cuisine Recipes",
				Description: "Traditional " + c + " recipes",
				MimeType:    mimeMarkdown,
			})
		}
		return &listResourcesResult{Resources: items}, nil

	case "resources/templates/list":
		return &listResourceTemplatesResult{ResourceTemplates: []resourceTemplate{{
			URITemplate: URIPrefix + "{cuisine}",
			Name:        "Cuisine Recipes",
			Description: "Traditional recipes organized by cuisine",
			MimeType:    mimeMarkdown,
		}}}, nil

	case "resources/read":
		var in readResourceParams
		if err := json.Unmarshal(params, &in); err != nil || in.URI == "" {
			return nil, mcp.InvalidParams("invalid params", nil)
		}
		return p.readResource(in.URI)

	case "tools/list":
		return &toolsListResult{Tools: tools}, nil

	case "tools/call":
		var in toolCallParams
		if err := json.Unmarshal(params, &in); err != nil || in.Name == "" {
			return nil, mcp.InvalidParams("invalid params", nil)
		}
		return p.CallTool(in.Name, in.Args)

	default:
		return nil, mcp.NewError(mcp.CodeMethodNotFound, "method not found")
	}
}

// CallTool runs a tool by name with raw JSON arguments.
func (p *Provider) CallTool(name string, args json.RawMessage) (*CallToolResult, *mcp.Error) {
	start := time.Now()
	var (
		res  *CallToolResult
		perr *mcp.Error
	)
	switch name {
	case "get_cuisines":
		res, perr = p.toolCuisines(args)
	case "get_recipes":
		res, perr = p.toolRecipes(args)
	case "generate_meal_plan":
		res, perr = p.toolMealPlan(args)
	case "analyze_ingredient_overlap":
		res, perr = p.toolOverlap(args)
	case "weekly_meal_planner":
		res, perr = p.toolWeeklyPlanner(args)
	default:
		perr = mcp.NewError(mcp.CodeMethodNotFound, "unknown tool: "+name)
	}

	log := logrus.WithFields(logrus.Fields{"tool": name, "elapsed": time.Since(start)})
	if perr != nil {
		log.WithError(perr).Warn("tool call failed")
		return nil, perr
	}
	log.WithField("chars", len(res.Text())).Info("tool call")
	return res, nil
}

// Tools implementations
func (p *Provider) toolCuisines(raw json.RawMessage) (*CallToolResult, *mcp.Error) {
	var args struct{}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	return textResult("Available cuisines: " + strings.Join(p.kitchen.Cuisines(), ", ")), nil
}

func (p *Provider) toolRecipes(raw json.RawMessage) (*CallToolResult, *mcp.Error) {
	var args cuisineArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := p.requireCuisine(args.Cuisine); err != nil {
		return nil, err
	}
	return textResult(p.kitchen.RenderRecipesMarkdown(args.Cuisine)), nil
}

func (p *Provider) toolMealPlan(raw json.RawMessage) (*CallToolResult, *mcp.Error) {
	var args mealPlanArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := p.requireCuisine(args.Cuisine); err != nil {
		return nil, err
	}
	days, servings := p.defaultDays, p.defaultServings
	if args.Days != nil {
		days = *args.Days
	}
	if args.Servings != nil {
		servings = *args.Servings
	}
	return p.mealPlan(args.Cuisine, days, servings)
}

func (p *Provider) toolWeeklyPlanner(raw json.RawMessage) (*CallToolResult, *mcp.Error) {
	var args cuisineArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := p.requireCuisine(args.Cuisine); err != nil {
		return nil, err
	}
	return p.mealPlan(args.Cuisine, planner.DefaultDays, planner.DefaultServings)
}

func (p *Provider) mealPlan(cuisine string, days, servings int) (*CallToolResult, *mcp.Error) {
	plan, err := p.kitchen.GenerateMealPlan(cuisine, days, servings)
	if err != nil {
		return nil, mcp.InvalidParams(err.Error(), nil)
	}
	return textResult(p.kitchen.RenderMealPlanMarkdown(plan)), nil
}

func (p *Provider) toolOverlap(raw json.RawMessage) (*CallToolResult, *mcp.Error) {
	var args cuisineArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := p.requireCuisine(args.Cuisine); err != nil {
		return nil, err
	}
	text, err := p.kitchen.AnalyzeIngredientOverlap(args.Cuisine)
	if err != nil {
		return nil, mcp.NewError(mcp.CodeInternalError, err.Error())
	}
	return textResult(text), nil
}

// Internals
func (p *Provider) readResource(uri string) (any, *mcp.Error) {
	cuisine, ok := cuisineFromURI(uri)
	if !ok {
		return nil, mcp.ResourceNotFound("resource_not_found", map[string]any{
			"message": "Resource URI must be in format '" + URIPrefix + "{cuisine}'",
			"uri":     uri,
		})
	}
	if !p.kitchen.HasCuisine(cuisine) {
		return nil, mcp.ResourceNotFound("resource_not_found", map[string]any{
			"message": fmt.Sprintf("Cuisine '%s' not found. Available cuisines: %s", cuisine, p.available()),
			"uri":     uri,
		})
	}
	return &readResourceResult{Contents: []resourceContents{{
		URI:      uri,
		MimeType: mimeMarkdown,
		Text:     p.kitchen.RenderRecipesMarkdown(cuisine),
	}}}, nil
}

func (p *Provider) requireCuisine(cuisine string) *mcp.Error {
	if p.kitchen.HasCuisine(cuisine) {
		return nil
	}
	return mcp.InvalidParams("invalid_cuisine", map[string]any{
		"message": fmt.Sprintf("Unknown cuisine: %s. Available cuisines: %s", cuisine, p.available()),
	})
}

func (p *Provider) available() string { return strings.Join(p.kitchen.Cuisines(), ", ") }

func cuisineFromURI(uri string) (string, bool) {
	for _, prefix := range []string{URIPrefix, aliasPrefix} {
		rest, ok := strings.CutPrefix(uri, prefix)
		if !ok || rest == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		return rest, true
	}
	return "", false
}
