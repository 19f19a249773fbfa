package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/settle/internal/config"
	"github.com/raphi011/settle/internal/hooks"
	"github.com/raphi011/settle/internal/output"
	"github.com/raphi011/settle/internal/settings"
	"github.com/raphi011/settle/internal/storage"
)

func TestGet_Default(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.run(t, newGetCmd(), "main/editor"); err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got := env.out.String(); got != "vim\n" {
		t.Errorf("output = %q, want vim", got)
	}
}

func TestGet_UnknownKeySuggests(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	err := env.run(t, newGetCmd(), "main/editr")
	if !errors.Is(err, settings.ErrUnknownKey) {
		t.Fatalf("error = %v, want ErrUnknownKey", err)
	}
	if !strings.Contains(err.Error(), "did you mean main/editor") {
		t.Errorf("error should suggest main/editor: %v", err)
	}
}

func TestGet_TypeHint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.store.SetStringList("custom/list", []string{"42"}); err != nil {
		t.Fatalf("SetStringList failed: %v", err)
	}

	if err := env.run(t, newGetCmd(), "custom/list/1/entry", "--type", "int"); err != nil {
		t.Fatalf("get --type failed: %v", err)
	}
	if got := env.out.String(); got != "42\n" {
		t.Errorf("output = %q, want 42", got)
	}

	var ak *settings.AmbiguousKeyError
	if err := env.run(t, newGetCmd(), "main/editor", "--type", "string"); !errors.As(err, &ak) {
		t.Errorf("hint on a schema key = %v, want *AmbiguousKeyError", err)
	}
	if err := env.run(t, newGetCmd(), "custom/missing", "-t", "string"); err == nil {
		t.Error("expected error for unset non-schema key")
	}
	if err := env.run(t, newGetCmd(), "custom/list/1/entry", "-t", "list"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestGet_JSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.run(t, newGetCmd(), "/resolve/max_fails/", "--json"); err != nil {
		t.Fatalf("get --json failed: %v", err)
	}

	var got struct {
		Key   string `json:"key"`
		Value int    `json:"value"`
	}
	if err := json.Unmarshal(env.out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", env.out.String(), err)
	}
	if got.Key != "resolve/max_fails" || got.Value != 10 {
		t.Errorf("JSON = %+v", got)
	}
}

func TestSet_ParsesIntoSchemaType(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	tests := []struct {
		key  string
		text string
		want any
	}{
		{"resolve/max_fails", "3", 3},
		{"resolve/timeout", "2.5", 2.5},
		{"main/confirm_exit", "yes", false},
		{"main/confirm_exit", "TRUE", true},
		{"main/editor", "nvim", "nvim"},
	}

	for _, tt := range tests {
		if err := env.run(t, newSetCmd(), tt.key, tt.text); err != nil {
			t.Fatalf("set %s %s failed: %v", tt.key, tt.text, err)
		}
		got, err := env.store.Value(tt.key)
		if err != nil || got != tt.want {
			t.Errorf("after set %s %q: Value = %#v, %v; want %#v", tt.key, tt.text, got, err, tt.want)
		}
	}
}

func TestSet_Errors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	if err := env.run(t, newSetCmd(), "resolve/max_fails", "many"); !errors.Is(err, settings.ErrTypeConversion) {
		t.Errorf("error = %v, want ErrTypeConversion", err)
	}
	if v, _ := env.store.Int("resolve/max_fails"); v != 10 {
		t.Errorf("failed set changed the value to %d", v)
	}
	if err := env.run(t, newSetCmd(), "main/unknown", "x"); !errors.Is(err, settings.ErrUnknownKey) {
		t.Errorf("error = %v, want ErrUnknownKey", err)
	}
}

func TestSet_TypeHint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	if err := env.run(t, newSetCmd(), "custom/count", "7", "--type", "int"); err != nil {
		t.Fatalf("set --type failed: %v", err)
	}
	if v, ok, err := env.store.Hinted("custom/count", settings.KindInt); err != nil || !ok || v != 7 {
		t.Errorf("Hinted(custom/count) = %#v, %v, %v; want 7", v, ok, err)
	}
	if err := env.run(t, newGetCmd(), "custom/count", "-t", "int"); err != nil {
		t.Fatalf("get -t failed: %v", err)
	}
	if got := env.out.String(); got != "7\n" {
		t.Errorf("output = %q, want 7", got)
	}

	if err := env.run(t, newSetCmd(), "custom/count", "seven", "-t", "int"); !errors.Is(err, settings.ErrTypeConversion) {
		t.Errorf("error = %v, want ErrTypeConversion", err)
	}
	var ak *settings.AmbiguousKeyError
	if err := env.run(t, newSetCmd(), "resolve/max_fails", "3", "-t", "int"); !errors.As(err, &ak) {
		t.Errorf("hint on a schema key = %v, want *AmbiguousKeyError", err)
	}
	if err := env.run(t, newSetCmd(), "custom/count", "7", "-t", "list"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestReadPipedValue(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	w.WriteString("nord\n\n")
	w.Close()
	defer r.Close()

	got, err := readPipedValue(r)
	if err != nil {
		t.Fatalf("readPipedValue failed: %v", err)
	}
	if got != "nord" {
		t.Errorf("readPipedValue() = %q, want nord", got)
	}
}

func TestUnset_RestoresDefault(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.store.Set("main/editor", "nano"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := env.store.SetStringList(config.ListRecentPaths, []string{"/a", "/b"}); err != nil {
		t.Fatalf("SetStringList failed: %v", err)
	}

	if err := env.run(t, newUnsetCmd(), "main/editor", config.ListRecentPaths); err != nil {
		t.Fatalf("unset failed: %v", err)
	}
	if v, _ := env.store.String("main/editor"); v != "vim" {
		t.Errorf("main/editor = %q, want default vim", v)
	}
	if keys, _ := env.store.Keys(); len(keys) != 0 {
		t.Errorf("persisted keys after unset = %v", keys)
	}
}

func TestUnset_All(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, key := range []string{"main/editor", "ui/theme"} {
		if err := env.store.Set(key, "x"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	if err := env.run(t, newUnsetCmd(), "--all", "main/editor"); err == nil {
		t.Error("--all with keys should fail")
	}
	if err := env.run(t, newUnsetCmd()); err == nil {
		t.Error("unset without keys should fail")
	}
	if err := env.run(t, newUnsetCmd(), "--all", "--yes"); err != nil {
		t.Fatalf("unset --all failed: %v", err)
	}
	if keys, _ := env.store.Keys(); len(keys) != 0 {
		t.Errorf("persisted keys after unset --all = %v", keys)
	}
}

func TestKeys(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.store.Set("ui/theme", "nord"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	t.Run("plain", func(t *testing.T) {
		if err := env.run(t, newKeysCmd(), "main"); err != nil {
			t.Fatalf("keys failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(env.out.String()), "\n")
		want := []string{"main/confirm_exit = true", "main/editor = vim"}
		if !slices.Equal(lines, want) {
			t.Errorf("lines = %q, want %q", lines, want)
		}
	})

	t.Run("json", func(t *testing.T) {
		if err := env.run(t, newKeysCmd(), "ui", "--json"); err != nil {
			t.Fatalf("keys --json failed: %v", err)
		}
		var rows []keyInfo
		if err := json.Unmarshal(env.out.Bytes(), &rows); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		var theme *keyInfo
		for i := range rows {
			if rows[i].Key == config.KeyTheme {
				theme = &rows[i]
			}
		}
		if theme == nil || theme.Value != "nord" || !theme.Persisted || theme.Type != "string" {
			t.Errorf("ui/theme row = %+v", theme)
		}
	})

	t.Run("persisted", func(t *testing.T) {
		if err := env.store.SetStringList("custom/list", []string{"x"}); err != nil {
			t.Fatalf("SetStringList failed: %v", err)
		}
		if err := env.run(t, newKeysCmd(), "--persisted"); err != nil {
			t.Fatalf("keys --persisted failed: %v", err)
		}
		want := "custom/list/1/entry = x\ncustom/list/size = 1\nui/theme = nord\n"
		if got := env.out.String(); got != want {
			t.Errorf("output = %q, want %q", got, want)
		}
	})
}

var errReadFailed = errors.New("read failed")

// unreadableEngine fails reads of keys under custom/.
type unreadableEngine struct {
	*storage.Engine
}

func (e unreadableEngine) Read(key string) (any, bool, error) {
	if strings.HasPrefix(key, "custom/") {
		return nil, false, errReadFailed
	}
	return e.Engine.Read(key)
}

func TestCollectKeys_PersistedReadError(t *testing.T) {
	t.Parallel()

	schema, err := config.DefaultSchema()
	if err != nil {
		t.Fatalf("DefaultSchema failed: %v", err)
	}
	store := settings.New(schema, unreadableEngine{storage.NewMemory()})
	for _, key := range []string{"custom/value", "ui/theme"} {
		if err := store.Set(key, "x"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	_, err = collectKeys(store, "", true)
	if !errors.Is(err, errReadFailed) {
		t.Errorf("collectKeys() error = %v, want the read error", err)
	}
	if errors.Is(err, settings.ErrUnknownKey) {
		t.Errorf("read error should not turn into an unknown key: %v", err)
	}

	rows, err := collectKeys(store, "ui/", true)
	if err != nil || len(rows) != 1 || rows[0].Value != "x" {
		t.Errorf("collectKeys(ui/) = %+v, %v", rows, err)
	}
}

func TestList(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	if err := env.run(t, newListCmd(), "set", "paths", "/a", "/b", "/c"); err != nil {
		t.Fatalf("list set failed: %v", err)
	}
	if err := env.run(t, newListCmd(), "prepend", "paths", "/c", "--max-key", config.KeyMaxRecent); err != nil {
		t.Fatalf("list prepend failed: %v", err)
	}
	if err := env.run(t, newListCmd(), "get", "paths"); err != nil {
		t.Fatalf("list get failed: %v", err)
	}
	if got := env.out.String(); got != "/c\n/a\n/b\n" {
		t.Errorf("list = %q", got)
	}

	if err := env.run(t, newListCmd(), "set", "paths"); err != nil {
		t.Fatalf("list set (empty) failed: %v", err)
	}
	if err := env.run(t, newListCmd(), "get", "paths", "--json"); err != nil {
		t.Fatalf("list get --json failed: %v", err)
	}
	if got := strings.TrimSpace(env.out.String()); got != "[]" {
		t.Errorf("empty list JSON = %q, want []", got)
	}

	err := env.run(t, newListCmd(), "prepend", "paths", "/x", "-m", "release/max_recnt")
	if !errors.Is(err, settings.ErrUnknownKey) {
		t.Errorf("error = %v, want ErrUnknownKey", err)
	}
}

func hookConfig() *config.Config {
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Backend: "memory"}
	cfg.Hooks = config.HooksConfig{Hooks: map[string]config.Hook{
		"check":  {Command: "exit 1", Events: []string{"pre-release"}},
		"notify": {Command: "echo {install-path}", Description: "Announce the release"},
	}}
	return &cfg
}

func TestHookList(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithConfig(t, hookConfig())
	if err := env.run(t, newHookCmd(), "list", "-s", t.TempDir()); err != nil {
		t.Fatalf("hook list failed: %v", err)
	}

	out := ansi.Strip(env.out.String())
	for _, want := range []string{"check", "exit 1", "notify", "Announce the release", "recent"} {
		if !strings.Contains(out, want) {
			t.Errorf("hook list output missing %q:\n%s", want, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		isDefault := strings.HasPrefix(strings.TrimSpace(line), "*")
		if strings.Contains(line, "recent") != isDefault {
			t.Errorf("only recent should be marked as default: %q", line)
		}
	}
}

func TestHookRun_RecordsRecentPaths(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithConfig(t, hookConfig())
	src := t.TempDir()

	for _, path := range []string{"/opt/foo/1.0", "/opt/foo/1.1"} {
		if err := env.run(t, newHookCmd(), "run", "post-release", "-s", src, "-i", path); err != nil {
			t.Fatalf("hook run failed: %v", err)
		}
	}

	got, _ := env.store.StringList(config.ListRecentPaths)
	if !slices.Equal(got, []string{"/opt/foo/1.1", "/opt/foo/1.0"}) {
		t.Errorf("recent paths = %v", got)
	}
}

func TestHookRun_PreReleaseCancelled(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithConfig(t, hookConfig())
	err := env.run(t, newHookCmd(), "run", "pre-release", "check", "-s", t.TempDir())
	if !errors.Is(err, hooks.ErrCancelled) {
		t.Errorf("error = %v, want ErrCancelled", err)
	}
}

func TestHookRun_DryRun(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithConfig(t, hookConfig())
	err := env.run(t, newHookCmd(), "run", "post-release", "notify", "missing",
		"-s", t.TempDir(), "-i", "/opt/foo", "-d")
	if err != nil {
		t.Fatalf("hook run failed: %v", err)
	}
	if got := env.out.String(); got != "[dry-run] notify: echo '/opt/foo'\n" {
		t.Errorf("output = %q", got)
	}
	if !strings.Contains(env.log.String(), `release hook "missing" is not available`) {
		t.Errorf("missing hook should be reported, log:\n%s", env.log.String())
	}
}

func TestHookRun_UnknownEvent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.run(t, newHookCmd(), "run", "post-build"); err == nil {
		t.Error("expected error for unknown event")
	}
}

func TestHookRun_LocalConfig(t *testing.T) {
	t.Parallel()

	src := t.TempDir()
	local := "release_hooks = [\"local\"]\n\n[hooks.local]\ncommand = \"echo {source}\"\n"
	if err := os.WriteFile(filepath.Join(src, config.LocalConfigFileName), []byte(local), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	env := newTestEnvWithConfig(t, hookConfig())
	if err := env.run(t, newHookCmd(), "run", "post-release", "-s", src, "-d"); err != nil {
		t.Fatalf("hook run failed: %v", err)
	}
	if want := "[dry-run] local: echo '" + src + "'\n"; env.out.String() != want {
		t.Errorf("output = %q, want %q", env.out.String(), want)
	}
}

func TestConfigShow_JSON(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithConfig(t, hookConfig())
	if err := env.run(t, newConfigCmd(), "show", "--json"); err != nil {
		t.Fatalf("config show failed: %v", err)
	}

	var got config.Config
	if err := json.Unmarshal(env.out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Store.Backend != "memory" || got.Theme != config.DefaultTheme {
		t.Errorf("config = %+v", got)
	}
	if _, ok := got.Hooks.Hooks["notify"]; !ok {
		t.Errorf("hooks missing notify: %+v", got.Hooks)
	}
}

func TestConfigSchema(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if err := env.run(t, newConfigCmd(), "schema"); err != nil {
		t.Fatalf("config schema failed: %v", err)
	}
	if _, err := settings.ParseSchema(env.out.Bytes()); err != nil {
		t.Errorf("schema output does not parse: %v", err)
	}
}

func TestConfigInit_Local(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	src := t.TempDir()

	if err := env.run(t, newConfigCmd(), "init", "--local", "--source", src); err != nil {
		t.Fatalf("config init --local failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(src, config.LocalConfigFileName)); err != nil {
		t.Fatalf("local config not created: %v", err)
	}
	if err := env.run(t, newConfigCmd(), "init", "--local", "--source", src); err == nil {
		t.Error("second init without --force should fail")
	}
}

func TestCompletion(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out.String(), "settle") {
		t.Error("completion script should mention settle")
	}
}

// resetGlobalFlags clears the persistent flag variables shared by every
// root command.
func resetGlobalFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verbose, quiet = false, false
		storePath, backend = "", ""
		ephemeral = false
	})
}

func TestRoot_EphemeralStore(t *testing.T) {
	resetGlobalFlags(t)

	path := filepath.Join(t.TempDir(), "settings.toml")
	cfg := config.Default()
	cfg.Store = config.StoreConfig{Path: path}

	var out bytes.Buffer
	ctx := config.WithConfig(t.Context(), &cfg)
	ctx = output.WithPrinter(ctx, &out)

	root := newRootCmd()
	root.SetContext(ctx)
	root.SetArgs([]string{"--ephemeral", "-q", "set", "main/editor", "nano"})
	if err := root.Execute(); err != nil {
		t.Fatalf("set --ephemeral failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("ephemeral set touched %s: %v", path, err)
	}
}

func TestRoot_VerboseAndQuiet(t *testing.T) {
	resetGlobalFlags(t)

	cfg := config.Default()
	root := newRootCmd()
	root.SetContext(config.WithConfig(t.Context(), &cfg))
	root.SetArgs([]string{"-v", "-q", "keys"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.Execute(); err == nil {
		t.Error("expected error for --verbose with --quiet")
	}
}

func TestVersionString(t *testing.T) {
	t.Parallel()

	if v := versionString(); !strings.HasPrefix(v, "settle dev (none, unknown, go") {
		t.Errorf("versionString() = %q", v)
	}
}
