package schema

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	AuditConfig = "audit_config"
	GatePolicy  = "gate_policy"
	Report      = "report"
)

//go:embed schemas/*.schema.json
var embedded embed.FS

// Validate checks doc against the JSON Schema file at schemaPath.
func Validate(schemaPath string, doc any) ([]string, error) {
	return run(schemaPath, gojsonschema.NewReferenceLoader("file://"+schemaPath), gojsonschema.NewGoLoader(doc))
}

// ValidateDocument checks a decoded document against a built-in schema.
func ValidateDocument(name string, doc any) ([]string, error) {
	loader, err := builtin(name)
	if err != nil {
		return nil, err
	}
	return run(name, loader, gojsonschema.NewGoLoader(doc))
}

// ValidateJSON checks raw JSON against a built-in schema.
func ValidateJSON(name string, raw []byte) ([]string, error) {
	loader, err := builtin(name)
	if err != nil {
		return nil, err
	}
	return run(name, loader, gojsonschema.NewBytesLoader(raw))
}

func Names() []string {
	entries, _ := embedded.ReadDir("schemas")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(out)
	return out
}

func builtin(name string) (gojsonschema.JSONLoader, error) {
	raw, err := embedded.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return gojsonschema.NewBytesLoader(raw), nil
}

func run(name string, schemaLoader, docLoader gojsonschema.JSONLoader) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	return errs, nil
}
