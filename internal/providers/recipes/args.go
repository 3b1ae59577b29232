package recipes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	mcp "github.com/hisgarden/mcp-server-meal-prep/internal/mcp"
)

type cuisineArgs struct {
	Cuisine string `json:"cuisine" validate:"required"`
}

type mealPlanArgs struct {
	Cuisine  string `json:"cuisine" validate:"required"`
	Days     *int   `json:"days,omitempty" validate:"omitempty,min=1,max=255"`
	Servings *int   `json:"servings,omitempty" validate:"omitempty,min=1,max=255"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON argument name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeArgs unmarshals tool arguments into dst and validates them. Missing
// arguments decode as an empty object; keys outside the tool schema are rejected.
func decodeArgs[T any](raw json.RawMessage, dst *T) *mcp.Error {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return mcp.InvalidParams("invalid arguments: "+strings.TrimPrefix(err.Error(), "json: "), nil)
	}
	if err := validate.Struct(dst); err != nil {
		return mcp.InvalidParams(describeValidation(err), nil)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid arguments: " + err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return "invalid arguments: " + strings.Join(msgs, "; ")
}

// schema creates a minimal JSON schema object for tool inputs.
// A trailing "?" on a field name marks it optional.
func schema(fields map[string]string) map[string]any {
	props := map[string]any{}
	required := []string{}
	for rawName, typ := range fields {
		name, opt := strings.CutSuffix(rawName, "?")
		switch typ {
		case "string", "number", "boolean", "integer":
			props[name] = map[string]any{"type": typ}
		default:
			props[name] = map[string]any{"type": "string"}
		}
		if !opt {
			required = append(required, name)
		}
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}
