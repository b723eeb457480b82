package qr

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateWritesBoundedPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "qr_codes")
	g := NewGenerator(dir, 0)

	path, err := g.Generate("LMP-2")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if path != filepath.Join(dir, "LMP-2.png") {
		t.Errorf("path = %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > MaxSize || b.Dy() > MaxSize {
		t.Errorf("image %dx%d exceeds %d", b.Dx(), b.Dy(), MaxSize)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the image", len(entries))
	}
}

func TestGenerateOverwrites(t *testing.T) {
	g := NewGenerator(t.TempDir(), 120)
	if _, err := g.Generate("DMS"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate("DMS"); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	data, err := g.Read("DMS")
	if err != nil || len(data) == 0 {
		t.Fatalf("Read = %d bytes, %v", len(data), err)
	}
}

func TestReadMissing(t *testing.T) {
	g := NewGenerator(t.TempDir(), 200)
	if _, err := g.Read("TOC"); !errors.Is(err, ErrNotGenerated) {
		t.Errorf("err = %v, want ErrNotGenerated", err)
	}
}

func TestRejectsPathLikeIDs(t *testing.T) {
	g := NewGenerator(t.TempDir(), 200)
	for _, id := range []string{"", "../etc", "a/b", `a\b`, ".hidden"} {
		if _, err := g.Generate(id); err == nil {
			t.Errorf("Generate(%q) accepted", id)
		}
	}
}

func TestSizeClamp(t *testing.T) {
	if got := NewGenerator("", 1000).Size(); got != MaxSize {
		t.Errorf("size = %d, want %d", got, MaxSize)
	}
	if got := NewGenerator("", 10).Size(); got != 64 {
		t.Errorf("size = %d, want 64", got)
	}
}
