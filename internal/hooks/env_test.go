package hooks

import (
	"os"
	"reflect"
	"testing"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"single", []string{"ticket=REL-7"}, map[string]string{"ticket": "REL-7"}, false},
		{"value with equals", []string{"q=a=b"}, map[string]string{"q": "a=b"}, false},
		{"empty value", []string{"notes="}, map[string]string{"notes": ""}, false},
		{"missing equals", []string{"ticket"}, nil, true},
		{"empty key", []string{"=value"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnv(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func pipeWith(t *testing.T, content string) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	if _, err := w.WriteString(content); err != nil {
		t.Fatalf("write to pipe failed: %v", err)
	}
	w.Close()
	t.Cleanup(func() { r.Close() })
	return r
}

func TestParseEnvWithStdin(t *testing.T) {
	got, err := ParseEnvWithStdin([]string{"notes=-", "ticket=REL-7", "body=-"}, pipeWith(t, "fixed the thing\n"))
	if err != nil {
		t.Fatalf("ParseEnvWithStdin failed: %v", err)
	}
	want := map[string]string{"notes": "fixed the thing", "body": "fixed the thing", "ticket": "REL-7"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseEnvWithStdin() = %v, want %v", got, want)
	}
}

func TestParseEnvWithStdin_Empty(t *testing.T) {
	if _, err := ParseEnvWithStdin([]string{"notes=-"}, pipeWith(t, "")); err == nil {
		t.Error("expected error for empty stdin")
	}
}
