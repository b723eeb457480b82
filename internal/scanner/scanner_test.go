package scanner

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestLineSourceStripsSymbology(t *testing.T) {
	src := NewLineSource(strings.NewReader("\n  \nQR-Code:DMS\nQR-Code:COA\n"))

	got, err := src.Next()
	if err != nil || got != "DMS" {
		t.Fatalf("Next = %q, %v", got, err)
	}
	got, err = src.Next()
	if err != nil || got != "COA" {
		t.Fatalf("second Next = %q, %v", got, err)
	}
	if _, err := src.Next(); !errors.Is(err, ErrNoCode) {
		t.Errorf("Next at EOF = %v, want ErrNoCode", err)
	}
}

func TestLineSourceRawPayload(t *testing.T) {
	got, err := NewLineSource(strings.NewReader("LMP-2\r\n")).Next()
	if err != nil || got != "LMP-2" {
		t.Fatalf("Next = %q, %v", got, err)
	}
}

func TestLineSourceEmptyPrefixedLine(t *testing.T) {
	if _, err := NewLineSource(strings.NewReader("QR-Code:\n")).Next(); !errors.Is(err, ErrNoCode) {
		t.Errorf("err = %v, want ErrNoCode", err)
	}
}

func TestCaptureReturnsFirstPayload(t *testing.T) {
	got, err := Capture(context.Background(), NewLineSource(strings.NewReader("QR-Code:TOC\nQR-Code:DMS\n")))
	if err != nil || got != "TOC" {
		t.Fatalf("Capture = %q, %v", got, err)
	}
}

func TestCaptureCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Capture(ctx, NewLineSource(r))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestCaptureStreamEndsWithoutCode(t *testing.T) {
	_, err := Capture(context.Background(), NewLineSource(strings.NewReader("")))
	if !errors.Is(err, ErrNoCode) {
		t.Fatalf("err = %v, want ErrNoCode", err)
	}
}
