package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/fxsml/mediate/message"
	"github.com/fxsml/mediate/message/expr"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type branchLimits struct {
	Concurrency int
	Continue    bool
}

type embeddedBase struct {
	BufferSize int
}

type gatewayConfig struct {
	embeddedBase
	Name     string
	Timeout  time.Duration
	Clone    branchLimits
	Ratio    float64
	Port     int16
	Handler  func(error)
	Logger   message.Logger
	internal int
}

func TestLoad_EngineConfig(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"MEDIATE_ENGINE_ENTRY":            "main",
		"MEDIATE_ENGINE_CONCURRENCY":      "8",
		"MEDIATE_ENGINE_BUFFER_SIZE":      "16",
		"MEDIATE_ENGINE_SHUTDOWN_TIMEOUT": "5s",
	})}

	cfg := message.EngineConfig{Entry: "default", Concurrency: 1}
	if err := l.Load("engine", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Entry != "main" || cfg.Concurrency != 8 || cfg.BufferSize != 16 || cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_ExprConfig(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{"MEDIATE_EXPR_MAX_DEPTH": "4"})}

	var cfg expr.Config
	if err := l.Load("expr", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.MaxDepth != 4 {
		t.Errorf("MaxDepth = %d, want 4", cfg.MaxDepth)
	}
}

func TestLoad_StructShapes(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"MEDIATE_GW_BUFFER_SIZE":       "3",
		"MEDIATE_GW_NAME":              "edge",
		"MEDIATE_GW_TIMEOUT":           "250ms",
		"MEDIATE_GW_CLONE_CONCURRENCY": "2",
		"MEDIATE_GW_CLONE_CONTINUE":    "true",
		"MEDIATE_GW_RATIO":             "0.5",
		"MEDIATE_GW_PORT":              "8080",
		"MEDIATE_GW_HANDLER":           "ignored",
		"MEDIATE_GW_INTERNAL":          "9",
	})}

	cfg := gatewayConfig{internal: 1}
	if err := l.Load("gw", &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.BufferSize != 3 {
		t.Errorf("BufferSize = %d, want 3", cfg.BufferSize)
	}
	if cfg.Name != "edge" || cfg.Timeout != 250*time.Millisecond {
		t.Errorf("Name, Timeout = %q, %v", cfg.Name, cfg.Timeout)
	}
	if cfg.Clone.Concurrency != 2 || !cfg.Clone.Continue {
		t.Errorf("Clone = %+v", cfg.Clone)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %v, want 8080", cfg.Port)
	}
	if cfg.Ratio != 0 || cfg.Handler != nil || cfg.Logger != nil || cfg.internal != 1 {
		t.Error("unsupported and unexported fields must be left alone")
	}
}

func TestLoad_MissingPreservesDefaults(t *testing.T) {
	l := Loader{lookup: envMap(nil)}

	cfg := message.EngineConfig{Entry: "main", Concurrency: 4}
	if err := l.Load("engine", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Entry != "main" || cfg.Concurrency != 4 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"MEDIATE_GW_BUFFER_SIZE":    "many",
		"MEDIATE_GW_TIMEOUT":        "soon",
		"MEDIATE_GW_CLONE_CONTINUE": "perhaps",
		"MEDIATE_GW_PORT":           "70000",
	}

	for key, raw := range tests {
		t.Run(key, func(t *testing.T) {
			l := Loader{lookup: envMap(map[string]string{key: raw})}
			var cfg gatewayConfig
			if err := l.Load("gw", &cfg); err == nil {
				t.Errorf("expected error for %s=%s", key, raw)
			}
		})
	}
}

func TestLoad_InvalidDestination(t *testing.T) {
	l := Loader{lookup: envMap(nil)}
	if err := l.Load("x", gatewayConfig{}); err == nil {
		t.Error("expected error for non-pointer")
	}
	n := 1
	if err := l.Load("x", &n); err == nil {
		t.Error("expected error for non-struct")
	}
}

func TestLoad_Files(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.env")
	local := filepath.Join(dir, "local.env")
	writeFile(t, base, "MEDIATE_ENGINE_ENTRY=from-base\nMEDIATE_ENGINE_CONCURRENCY=2\nMEDIATE_ENGINE_BUFFER_SIZE=1\n")
	writeFile(t, local, "# local overrides\nMEDIATE_ENGINE_CONCURRENCY=3\n")

	l := Loader{
		Files:  []string{base, local},
		lookup: envMap(map[string]string{"MEDIATE_ENGINE_BUFFER_SIZE": "9"}),
	}

	var cfg message.EngineConfig
	if err := l.Load("engine", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Entry != "from-base" {
		t.Errorf("Entry = %q, want from-base", cfg.Entry)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("Concurrency = %d, want 3 (later file wins)", cfg.Concurrency)
	}
	if cfg.BufferSize != 9 {
		t.Errorf("BufferSize = %d, want 9 (environment wins)", cfg.BufferSize)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l := Loader{Files: []string{filepath.Join(t.TempDir(), "missing.env")}}
	var cfg message.EngineConfig
	if err := l.Load("engine", &cfg); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestLoad_PackageLevelFunc(t *testing.T) {
	t.Setenv("MEDIATE_PKG_CONCURRENCY", "99")

	var cfg message.EngineConfig
	if err := Load("pkg", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Concurrency != 99 {
		t.Errorf("Concurrency = %d, want 99", cfg.Concurrency)
	}
}

func TestKeys(t *testing.T) {
	got := Keys("gw", &gatewayConfig{})
	want := []string{
		"MEDIATE_GW_BUFFER_SIZE",
		"MEDIATE_GW_NAME",
		"MEDIATE_GW_TIMEOUT",
		"MEDIATE_GW_CLONE_CONCURRENCY",
		"MEDIATE_GW_CLONE_CONTINUE",
		"MEDIATE_GW_PORT",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}

	if got := (Loader{Prefix: "APP"}).Keys("expr", expr.Config{}); !slices.Equal(got, []string{"APP_EXPR_MAX_DEPTH"}) {
		t.Errorf("Keys() = %v", got)
	}
	if Keys("x", 1) != nil {
		t.Error("expected nil keys for non-struct")
	}
}

func TestToUpperSnake(t *testing.T) {
	tests := map[string]string{
		"BufferSize":      "BUFFER_SIZE",
		"ShutdownTimeout": "SHUTDOWN_TIMEOUT",
		"MaxDepth":        "MAX_DEPTH",
		"URLPath":         "URL_PATH",
		"HTTPClient":      "HTTP_CLIENT",
		"ID":              "ID",
		"I8":              "I8",
	}
	for in, want := range tests {
		if got := toUpperSnake(in); got != want {
			t.Errorf("toUpperSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeComponent(t *testing.T) {
	tests := map[string]string{
		"engine":          "ENGINE",
		"order-intake":    "ORDER_INTAKE",
		"My Component":    "MY_COMPONENT",
		"with_underscore": "WITH_UNDERSCORE",
		"special!@#chars": "SPECIALCHARS",
	}
	for in, want := range tests {
		if got := normalizeComponent(in); got != want {
			t.Errorf("normalizeComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
