// Package qr renders class QR codes to PNG files.
package qr

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// MaxSize is the thumbnail bound, in pixels, of a generated image.
const MaxSize = 200

// minSize keeps every supported payload scannable.
const minSize = 64

// ErrNotGenerated is returned when no image exists for a class yet.
var ErrNotGenerated = errors.New("qr code not generated")

// Generator writes one PNG per class into a directory.
type Generator struct {
	dir  string
	size int
}

// NewGenerator creates a generator. size is clamped to [64, MaxSize].
func NewGenerator(dir string, size int) *Generator {
	if size <= 0 || size > MaxSize {
		size = MaxSize
	}
	if size < minSize {
		size = minSize
	}
	return &Generator{dir: dir, size: size}
}

// Size returns the edge length of generated images.
func (g *Generator) Size() int { return g.size }

// Encode renders payload as PNG bytes without touching the filesystem.
func (g *Generator) Encode(payload string) ([]byte, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return q.PNG(g.size)
}

// Generate renders classID and stores it as <dir>/<classID>.png, replacing any
// previous image atomically.
func (g *Generator) Generate(classID string) (string, error) {
	path, err := g.path(classID)
	if err != nil {
		return "", err
	}

	png, err := g.Encode(classID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create qr dir: %w", err)
	}

	tmp, err := os.CreateTemp(g.dir, "."+classID+"-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(png); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return path, nil
}

// Read returns the stored image for classID.
func (g *Generator) Read(classID string) ([]byte, error) {
	path, err := g.path(classID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotGenerated
	}
	return data, err
}

func (g *Generator) path(classID string) (string, error) {
	if classID == "" || strings.ContainsAny(classID, `/\`) || strings.HasPrefix(classID, ".") {
		return "", fmt.Errorf("invalid class id %q", classID)
	}
	return filepath.Join(g.dir, classID+".png"), nil
}
