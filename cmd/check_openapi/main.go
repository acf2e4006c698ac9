// Command check_openapi verifies that the backend OpenAPI document lists every
// route the server serves and describes the JSON models the way the Go types
// encode them.
package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"irisguide/pkg/domain"
)

type openAPIDoc struct {
	Paths      map[string]map[string]any `yaml:"paths"`
	Components struct {
		Schemas         map[string]schema `yaml:"schemas"`
		Responses       map[string]any    `yaml:"responses"`
		Parameters      map[string]any    `yaml:"parameters"`
		SecuritySchemes map[string]any    `yaml:"securitySchemes"`
	} `yaml:"components"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
	Items      *schema           `yaml:"items"`
}

type route struct {
	path   string
	method string
}

var routes = []route{
	{"/healthz", "get"},
	{"/api/auth/register", "post"},
	{"/api/auth/login", "post"},
	{"/api/auth/logout", "post"},
	{"/api/user/{id}", "get"},
	{"/api/user/{id}/settings", "put"},
	{"/api/user/{id}/password", "post"},
	{"/api/faces/add", "post"},
	{"/api/faces/{userId}", "get"},
	{"/api/alerts/sos", "post"},
	{"/api/alerts", "get"},
}

var models = map[string]any{
	"Account":  domain.Account{},
	"Settings": domain.Settings{},
	"Face":     domain.Face{},
	"Alert":    domain.Alert{},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <backend-openapi.yaml>\n", os.Args[0])
		os.Exit(2)
	}
	if err := checkFile(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	fmt.Println("OpenAPI consistency check passed.")
}

func checkFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return check(raw)
}

func check(raw []byte) error {
	var doc openAPIDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	errs := []error{checkRoutes(doc), checkRefs(doc, &root)}
	if s, err := getSchema(doc, "ErrorResponse"); err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, validateErrorResponse(s))
	}
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s, err := getSchema(doc, name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, ensureSameShape(name, s, models[name]))
	}
	return errors.Join(errs...)
}

func checkRoutes(doc openAPIDoc) error {
	var errs []error
	for _, r := range routes {
		ops, ok := doc.Paths[r.path]
		if !ok {
			errs = append(errs, fmt.Errorf("path %s missing", r.path))
			continue
		}
		if _, ok := ops[r.method]; !ok {
			errs = append(errs, fmt.Errorf("%s %s missing", strings.ToUpper(r.method), r.path))
		}
	}
	return errors.Join(errs...)
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

// validateErrorResponse matches the body written by the server's writeError.
func validateErrorResponse(s schema) error {
	if s.Type != "object" {
		return errors.New("ErrorResponse must be object")
	}
	required := makeSet(s.Required)
	for _, field := range []string{"message", "error"} {
		if !required[field] {
			return fmt.Errorf("ErrorResponse.required must include %q", field)
		}
		if prop, ok := s.Properties[field]; !ok || prop.Type != "string" {
			return fmt.Errorf("ErrorResponse.%s must be string", field)
		}
	}
	return nil
}

type propertyShape struct {
	Type string
	Ref  string
}

func shapeFromSchema(s schema) map[string]propertyShape {
	out := make(map[string]propertyShape, len(s.Properties))
	for name, prop := range s.Properties {
		out[name] = propertyShape{Type: prop.Type, Ref: strings.TrimSpace(prop.Ref)}
	}
	return out
}

// shapeFromModel derives the expected properties from the json tags of model.
func shapeFromModel(model any) map[string]propertyShape {
	t := reflect.TypeOf(model)
	out := make(map[string]propertyShape, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		out[name] = jsonShape(f.Type)
	}
	return out
}

var timeType = reflect.TypeOf(time.Time{})

func jsonShape(t reflect.Type) propertyShape {
	if t == timeType {
		return propertyShape{Type: "string"}
	}
	switch t.Kind() {
	case reflect.String:
		return propertyShape{Type: "string"}
	case reflect.Bool:
		return propertyShape{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return propertyShape{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return propertyShape{Type: "number"}
	case reflect.Slice, reflect.Array:
		return propertyShape{Type: "array"}
	case reflect.Struct:
		return propertyShape{Ref: "#/components/schemas/" + t.Name()}
	default:
		return propertyShape{Type: "object"}
	}
}

func ensureSameShape(name string, s schema, model any) error {
	if s.Type != "object" {
		return fmt.Errorf("%s must be object", name)
	}
	doc, want := shapeFromSchema(s), shapeFromModel(model)
	var errs []error
	for key, w := range want {
		got, ok := doc[key]
		if !ok {
			errs = append(errs, fmt.Errorf("%s missing property %q", name, key))
			continue
		}
		if got != w {
			errs = append(errs, fmt.Errorf("%s property %q mismatch: %+v vs %+v", name, key, got, w))
		}
	}
	for key := range doc {
		if _, ok := want[key]; !ok {
			errs = append(errs, fmt.Errorf("%s documents unknown property %q", name, key))
		}
	}
	for _, req := range s.Required {
		if _, ok := doc[req]; !ok {
			errs = append(errs, fmt.Errorf("%s requires undeclared property %q", name, req))
		}
	}
	return errors.Join(errs...)
}

// checkRefs resolves every local $ref in the document.
func checkRefs(doc openAPIDoc, root *yaml.Node) error {
	var refs []string
	collectRefs(root, &refs)
	sections := map[string]func(string) bool{
		"schemas":         func(n string) bool { _, ok := doc.Components.Schemas[n]; return ok },
		"responses":       func(n string) bool { _, ok := doc.Components.Responses[n]; return ok },
		"parameters":      func(n string) bool { _, ok := doc.Components.Parameters[n]; return ok },
		"securitySchemes": func(n string) bool { _, ok := doc.Components.SecuritySchemes[n]; return ok },
	}
	var errs []error
	for _, ref := range refs {
		rest, ok := strings.CutPrefix(ref, "#/components/")
		if !ok {
			errs = append(errs, fmt.Errorf("unsupported $ref %q", ref))
			continue
		}
		section, name, _ := strings.Cut(rest, "/")
		exists, known := sections[section]
		if !known || !exists(name) {
			errs = append(errs, fmt.Errorf("unresolved $ref %q", ref))
		}
	}
	return errors.Join(errs...)
}

func collectRefs(n *yaml.Node, out *[]string) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Value == "$ref" && val.Kind == yaml.ScalarNode {
				*out = append(*out, val.Value)
				continue
			}
			collectRefs(val, out)
		}
		return
	}
	for _, c := range n.Content {
		collectRefs(c, out)
	}
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}
