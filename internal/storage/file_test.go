package storage

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestFileBackend_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	for _, format := range []string{KindTOML, KindJSON} {
		t.Run(format, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "settings."+format)

			e, err := Open(format, path)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if err := e.Write("main/confirm_exit", false); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			writeArray(t, e, "recent", []string{"/a", "/b"})

			reopened, err := Open(format, path)
			if err != nil {
				t.Fatalf("reopen failed: %v", err)
			}
			v, ok, err := reopened.Read("main/confirm_exit")
			if err != nil || !ok || v != false {
				t.Errorf("Read after reopen = %v, %v, %v; want false", v, ok, err)
			}
			if got := readArray(t, reopened, "recent"); !slices.Equal(got, []string{"/a", "/b"}) {
				t.Errorf("array after reopen = %v", got)
			}
		})
	}
}

func TestFileBackend_TOMLLayout(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.toml")
	b, err := OpenFileBackend(path, KindTOML)
	if err != nil {
		t.Fatalf("OpenFileBackend failed: %v", err)
	}
	if err := b.Set("main/editor", "vim"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "[main]") || !strings.Contains(content, `editor = "vim"`) {
		t.Errorf("document should nest keys by segment, got:\n%s", content)
	}
}

func TestFileBackend_SeesOtherWriters(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.toml")
	a, err := OpenFileBackend(path, KindTOML)
	if err != nil {
		t.Fatalf("open a failed: %v", err)
	}
	b, err := OpenFileBackend(path, KindTOML)
	if err != nil {
		t.Fatalf("open b failed: %v", err)
	}

	if err := a.Set("main/editor", "vim"); err != nil {
		t.Fatalf("a.Set failed: %v", err)
	}
	// b writes an unrelated key; a's key must survive
	if err := b.Set("main/theme", "nord"); err != nil {
		t.Fatalf("b.Set failed: %v", err)
	}

	if err := a.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}
	keys, _ := a.Keys()
	if !slices.Equal(keys, []string{"main/editor", "main/theme"}) {
		t.Errorf("Keys() = %v, want both writers' keys", keys)
	}
}

func TestFileBackend_JSONNumbers(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"resolve": {"max_fails": 10, "ratio": 0.25}}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	b, err := OpenFileBackend(path, KindJSON)
	if err != nil {
		t.Fatalf("OpenFileBackend failed: %v", err)
	}
	if v, _, _ := b.Get("resolve/max_fails"); v != 10 {
		t.Errorf("max_fails = %#v, want int 10", v)
	}
	if v, _, _ := b.Get("resolve/ratio"); v != 0.25 {
		t.Errorf("ratio = %#v, want float 0.25", v)
	}
}

func TestFileBackend_JSONNullIsAbsent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"main": {"editor": null, "confirm_exit": false}, "theme": null}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	b, err := OpenFileBackend(path, KindJSON)
	if err != nil {
		t.Fatalf("OpenFileBackend failed: %v", err)
	}
	if _, ok, err := b.Get("main/editor"); err != nil || ok {
		t.Errorf("null leaf: ok = %v, err = %v; want absent", ok, err)
	}
	keys, _ := b.Keys()
	if !slices.Equal(keys, []string{"main/confirm_exit"}) {
		t.Errorf("Keys() = %v, want [main/confirm_exit]", keys)
	}

	// The document stays writable and drops the nulls on rewrite
	if err := b.Set("main/editor", "vim"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok, _ := b.Get("main/editor"); !ok || v != "vim" {
		t.Errorf("main/editor after Set = %v, %v", v, ok)
	}
}

func TestFileBackend_Errors(t *testing.T) {
	t.Parallel()

	t.Run("corrupted document", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.toml")
		if err := os.WriteFile(path, []byte("main = [unclosed"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if _, err := OpenFileBackend(path, KindTOML); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		if _, err := OpenFileBackend("x.yaml", "yaml"); err == nil {
			t.Error("expected error for yaml format")
		}
	})

	t.Run("leaf and group conflict", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.toml")
		b, err := OpenFileBackend(path, KindTOML)
		if err != nil {
			t.Fatalf("OpenFileBackend failed: %v", err)
		}
		if err := b.Set("main", "flat"); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := b.Set("main/editor", "vim"); err == nil {
			t.Error("expected conflict between leaf main and group main")
		}
		// The failed write must not be visible
		if _, ok, _ := b.Get("main/editor"); ok {
			t.Error("failed write leaked into the cache")
		}
	})
}

func TestUnflatten(t *testing.T) {
	t.Parallel()

	doc, err := unflatten(map[string]any{
		"recent/size":    1,
		"recent/1/entry": "/a",
		"top":            true,
	})
	if err != nil {
		t.Fatalf("unflatten failed: %v", err)
	}

	recent, ok := doc["recent"].(map[string]any)
	if !ok {
		t.Fatalf("recent = %#v, want table", doc["recent"])
	}
	if recent["size"] != 1 {
		t.Errorf("recent.size = %v, want 1", recent["size"])
	}
	elem, ok := recent["1"].(map[string]any)
	if !ok || elem["entry"] != "/a" {
		t.Errorf("recent.1 = %#v, want entry=/a", recent["1"])
	}
	if doc["top"] != true {
		t.Errorf("top = %v, want true", doc["top"])
	}

	flat := make(map[string]any)
	if err := flatten("", doc, flat); err != nil {
		t.Fatalf("flatten failed: %v", err)
	}
	if len(flat) != 3 || flat["recent/1/entry"] != "/a" {
		t.Errorf("flatten(unflatten(x)) = %v", flat)
	}
}
