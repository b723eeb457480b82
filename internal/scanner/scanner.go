// Package scanner turns the output of an external barcode decoder into a single
// scan result. Decoding camera frames is left to the decoder process (zbarcam
// prints one "QR-Code:<payload>" line per symbol); this package only runs the
// blocking read in the background and hands back the first payload.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ErrNoCode is returned when the decoder stream ends without producing a payload.
var ErrNoCode = errors.New("no QR code detected")

// ErrCancelled is returned when capture stops before a payload was decoded.
var ErrCancelled = errors.New("scan cancelled")

// Source yields decoded payloads. Next blocks until one is available.
type Source interface {
	Next() (string, error)
}

// symbologyPrefixes are stripped from decoder lines.
var symbologyPrefixes = []string{"QR-Code:", "QRCODE:"}

// LineSource reads one payload per line from decoder output.
type LineSource struct {
	sc *bufio.Scanner
}

// NewLineSource wraps r. Lines may carry a zbar symbology prefix.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{sc: bufio.NewScanner(r)}
}

// Next returns the next non-empty payload.
func (s *LineSource) Next() (string, error) {
	for s.sc.Scan() {
		payload := strings.TrimSpace(s.sc.Text())
		for _, p := range symbologyPrefixes {
			if rest, ok := strings.CutPrefix(payload, p); ok {
				payload = strings.TrimSpace(rest)
				break
			}
		}
		if payload != "" {
			return payload, nil
		}
	}
	if err := s.sc.Err(); err != nil {
		return "", fmt.Errorf("read decoder output: %w", err)
	}
	return "", ErrNoCode
}

// Capture runs src.Next on a background goroutine and returns the first payload.
// It returns ErrCancelled if ctx ends first. The goroutine exits once src
// unblocks, e.g. when the decoder process is killed.
func Capture(ctx context.Context, src Source) (string, error) {
	type result struct {
		payload string
		err     error
	}
	done := make(chan result, 1)

	go func() {
		payload, err := src.Next()
		done <- result{payload: payload, err: err}
	}()

	select {
	case r := <-done:
		return r.payload, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}
}

// CommandSource runs a decoder process and reads payloads from its stdout.
type CommandSource struct {
	*LineSource
	cmd       *exec.Cmd
	closeOnce sync.Once
	closeErr  error
}

// StartCommand launches the decoder. The process is killed when ctx ends.
func StartCommand(ctx context.Context, name string, args ...string) (*CommandSource, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("decoder stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	return &CommandSource{LineSource: NewLineSource(stdout), cmd: cmd}, nil
}

// Close stops the decoder process and waits for it to exit. Later calls
// return the first result.
func (s *CommandSource) Close() error {
	s.closeOnce.Do(func() {
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		err := s.cmd.Wait()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = nil
		}
		s.closeErr = err
	})
	return s.closeErr
}

// CaptureCommand runs the decoder until it yields one payload or ctx ends.
// The process has exited by the time CaptureCommand returns.
func CaptureCommand(ctx context.Context, name string, args ...string) (string, error) {
	src, err := StartCommand(ctx, name, args...)
	if err != nil {
		return "", err
	}
	payload, err := Capture(ctx, src)
	if cerr := src.Close(); cerr != nil && err == nil {
		return payload, fmt.Errorf("stop %s: %w", name, cerr)
	}
	return payload, err
}
