package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverInputSingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "leads.dat") // extension is irrelevant for a direct file
	if err := os.WriteFile(path, []byte("a@example.com\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := DiscoverInput(path)
	if err != nil {
		t.Fatalf("DiscoverInput returned error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].Path != path || files[0].Text != "a@example.com\n" {
		t.Errorf("file = %+v", files[0])
	}
}

func TestDiscoverInputDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("one.txt", "a@example.com")
	writeFile("two.csv", "email\nb@example.com")
	writeFile("notes.md", "c@example.com") // wrong extension, skipped
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := DiscoverInput(dir)
	if err != nil {
		t.Fatalf("DiscoverInput returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %+v", len(files), files)
	}
	names := map[string]bool{}
	for _, f := range files {
		names[filepath.Base(f.Path)] = true
	}
	if !names["one.txt"] || !names["two.csv"] {
		t.Errorf("discovered %v, want one.txt and two.csv", names)
	}
}

func TestDiscoverInputMissing(t *testing.T) {
	t.Parallel()

	if _, err := DiscoverInput(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrInputMissing) {
		t.Errorf("missing path err = %v, want ErrInputMissing", err)
	}

	// A directory with no readable text files is also missing input.
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DiscoverInput(dir); !errors.Is(err, ErrInputMissing) {
		t.Errorf("empty dir err = %v, want ErrInputMissing", err)
	}
}
