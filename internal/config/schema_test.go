package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

func compileSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	schemaPath := filepath.Join(repoRoot(t), "docs", "schema", "config-v1.schema.json")
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(data)); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}
	return schema
}

// asJSONValue normalizes v to what encoding/json produces.
func asJSONValue(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchema_DefaultConfig(t *testing.T) {
	schema := compileSchema(t)
	if err := schema.Validate(asJSONValue(t, DefaultConfig())); err != nil {
		t.Fatalf("default config does not match schema: %v", err)
	}
}

func TestSchema_ExampleConfig(t *testing.T) {
	schema := compileSchema(t)
	path := filepath.Join(repoRoot(t), "docs", "config.example.toml")

	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		t.Fatalf("decode example: %v", err)
	}
	if err := schema.Validate(asJSONValue(t, doc)); err != nil {
		t.Fatalf("example config does not match schema: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load example: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("example config invalid: %v", err)
	}
}

func TestSchema_RejectsWhatValidateRejects(t *testing.T) {
	schema := compileSchema(t)

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short chain", func(c *Config) { c.Trail.Length = 1 }},
		{"friction one", func(c *Config) { c.Trail.Friction = 1 }},
		{"bad color", func(c *Config) { c.Trail.Color = "black" }},
		{"zero tick", func(c *Config) { c.Scheduler.AnimationTickMs = 0 }},
		{"bad output", func(c *Config) { c.Logging.Output = "syslog" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			if cfg.Validate() == nil {
				t.Fatal("Validate accepted the config")
			}
			if schema.Validate(asJSONValue(t, cfg)) == nil {
				t.Fatal("schema accepted the config")
			}
		})
	}
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
