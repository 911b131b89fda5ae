package config

import (
	"os"
	"testing"
)

func fixedHome(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func envFrom(vars map[string]string) EnvLookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDefaultsWithNoFileOrEnv(t *testing.T) {
	cfg, meta, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "mock" || cfg.Model != "mock-echo" {
		t.Fatalf("expected default provider/model, got %+v", cfg)
	}
	if cfg.HomeDir != "/home/test/.myclaw" {
		t.Fatalf("expected derived home dir, got %s", cfg.HomeDir)
	}
	if meta.Source("provider") != SourceDefault {
		t.Fatalf("expected provider source default, got %s", meta.Source("provider"))
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	fileContents := []byte(`{"provider":"openai","model":"gpt-5","baseURL":"https://example.test/v1","runtime":{"maxSteps":40}}`)
	cfg, meta, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-5" {
		t.Fatalf("expected file values to override defaults, got %+v", cfg)
	}
	if cfg.Runtime.MaxSteps != 40 {
		t.Fatalf("expected runtime.maxSteps 40, got %d", cfg.Runtime.MaxSteps)
	}
	if cfg.Runtime.ModelTimeoutMs != 30000 {
		t.Fatalf("expected untouched field to keep its default, got %d", cfg.Runtime.ModelTimeoutMs)
	}
	if meta.Source("model") != SourceFile {
		t.Fatalf("expected model source file, got %s", meta.Source("model"))
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	fileContents := []byte(`{"model":"file-model"}`)
	cfg, meta, err := Load(
		WithEnv(envFrom(map[string]string{"OPENAI_MODEL": "env-model"})),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "env-model" {
		t.Fatalf("expected env model to win, got %s", cfg.Model)
	}
	if meta.Source("model") != SourceEnv {
		t.Fatalf("expected model source environment, got %s", meta.Source("model"))
	}
}

func TestLoadEmptyEnvStringIsTreatedAsUnset(t *testing.T) {
	fileContents := []byte(`{"model":"file-model"}`)
	cfg, meta, err := Load(
		WithEnv(envFrom(map[string]string{"OPENAI_MODEL": ""})),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Model != "file-model" {
		t.Fatalf("expected empty-string env var to be ignored, got %s", cfg.Model)
	}
	if meta.Source("model") != SourceFile {
		t.Fatalf("expected model source file when env is empty, got %s", meta.Source("model"))
	}
}

func TestLoadRejectsInvalidProvider(t *testing.T) {
	fileContents := []byte(`{"provider":"azure"}`)
	_, _, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err == nil {
		t.Fatalf("expected validation error for an unsupported provider")
	}
}

func TestLoadRejectsInvalidOpenAIBaseURL(t *testing.T) {
	fileContents := []byte(`{"provider":"openai","model":"gpt-5","baseURL":"not-a-url"}`)
	_, _, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err == nil {
		t.Fatalf("expected a validation error for an invalid baseURL")
	}
}

func TestLoadAcceptsAnthropicProvider(t *testing.T) {
	fileContents := []byte(`{"provider":"anthropic","model":"claude-sonnet","baseURL":"https://api.anthropic.com/v1"}`)
	cfg, _, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("expected anthropic to be a supported provider, got error: %v", err)
	}
	if cfg.Provider != "anthropic" || cfg.Model != "claude-sonnet" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsInvalidAnthropicBaseURL(t *testing.T) {
	fileContents := []byte(`{"provider":"anthropic","model":"claude-sonnet","baseURL":"not-a-url"}`)
	_, _, err := Load(
		WithEnv(envFrom(nil)),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return fileContents, nil }),
		WithWorkspace("/ws"),
	)
	if err == nil {
		t.Fatalf("expected a validation error for an invalid baseURL")
	}
}

func TestLoadMyclawHomeEnvOverridesUserHomeDir(t *testing.T) {
	cfg, _, err := Load(
		WithEnv(envFrom(map[string]string{"MYCLAW_HOME": "/custom/home"})),
		WithHomeDirResolver(fixedHome("/home/test")),
		WithFileReader(func(string) ([]byte, error) { return nil, os.ErrNotExist }),
		WithWorkspace("/ws"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HomeDir != "/custom/home" {
		t.Fatalf("expected MYCLAW_HOME to be used verbatim, got %s", cfg.HomeDir)
	}
}
