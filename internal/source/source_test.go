package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscover_SingleLevel(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir,
		"b.go",
		"a.go",
		"notes.txt",
		".hidden.go",
		filepath.Join("nested", "deep.go"),
	)

	files, err := Discover(tmpDir, ".go", false)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(tmpDir, "a.go"),
		filepath.Join(tmpDir, "b.go"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for i, f := range files {
		if f != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, f, want[i])
		}
	}
}

func TestDiscover_Recursive(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir,
		"top.go",
		filepath.Join("nested", "deep.go"),
		filepath.Join(".git", "ignored.go"),
		filepath.Join("nested", "readme.md"),
	)

	files, err := Discover(tmpDir, ".go", true)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		filepath.Join(tmpDir, "top.go"):            true,
		filepath.Join(tmpDir, "nested", "deep.go"): true,
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %q", f)
		}
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), ".go", false)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
	if !os.IsNotExist(err) {
		t.Errorf("error should satisfy os.IsNotExist: %v", err)
	}
}

func TestBinName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "src/hello.go", want: "hello"},
		{path: "hello.rs", want: "hello"},
		{path: filepath.Join("a", "b", "tool.go"), want: "tool"},
		{path: "noext", want: "noext"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := BinName(tc.path); got != tc.want {
				t.Errorf("BinName(%q) = %q, want %q", tc.path, got, tc.want)
			}
		})
	}
}
