package remote

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://schemas.tada.local/"

// Response shapes checked in strict mode.
const (
	schemaTodo      = "todo.json"
	schemaTodos     = "todos.json"
	schemaCompleted = "completed.json"
	schemaTitle     = "title.json"
)

type validator struct {
	schemas map[string]*jsonschema.Schema
}

func newValidator() (*validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	for _, e := range entries {
		b, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", e.Name(), err)
		}
		if err := compiler.AddResource(schemaBase+e.Name(), bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", e.Name(), err)
		}
	}

	v := &validator{schemas: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{schemaTodo, schemaTodos, schemaCompleted, schemaTitle} {
		s, err := compiler.Compile(schemaBase + name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = s
	}
	return v, nil
}

func (v *validator) validate(name string, body []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema %s: %s", name, describe(err))
	}
	return nil
}

// describe flattens a validation error into "path: message" pairs.
func describe(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	var parts []string
	collect(ve, &parts)
	return strings.Join(parts, "; ")
}

func collect(ve *jsonschema.ValidationError, parts *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*parts = append(*parts, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collect(c, parts)
	}
}
