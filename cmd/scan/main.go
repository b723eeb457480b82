package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/stemsi/qrattend-backend/internal/client"
	"github.com/stemsi/qrattend-backend/internal/logger"
	"github.com/stemsi/qrattend-backend/internal/netinfo"
	"github.com/stemsi/qrattend-backend/internal/scanner"
	"golang.org/x/term"
)

const msgNothingDecoded = "No QR code detected or scan cancelled."

// scan logs a student in, reads one QR code from the camera decoder and
// submits it together with the Wi-Fi network this machine is on.
func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("scan", pflag.ExitOnError)
	server := flags.StringP("server", "s", envOr("QRATTEND_SERVER", "http://localhost:8080/api/v1"), "API base URL")
	id := flags.String("id", "", "Student ID (prompted when empty)")
	decoder := flags.String("decoder", "zbarcam", "QR decoder command")
	decoderArgs := flags.StringSlice("decoder-arg", []string{"--raw"}, "Argument passed to the decoder (repeatable)")
	fromStdin := flags.Bool("stdin", false, "Read the decoded payload from stdin instead of running the decoder")
	ssid := flags.String("ssid", "", "Report this network instead of probing the wireless interface")
	timeout := flags.DurationP("timeout", "t", 30*time.Second, "Give up waiting for a code after this long")
	logLevel := flags.String("log-level", "warn", "Log level")
	_ = flags.Parse(args)

	log := logger.SetupWriter(os.Stderr, *logLevel, "pretty")
	ctx := context.Background()
	api := client.New(*server)

	// ─── Login ─────────────────────────────────────────────────────────
	studentID := *id
	stdin := bufio.NewReader(os.Stdin)
	if studentID == "" {
		fmt.Print("Student ID: ")
		line, _ := stdin.ReadString('\n')
		studentID = strings.TrimRight(line, "\r\n")
	}
	password, err := readPassword(stdin)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read password")
		return 1
	}

	login, err := api.StudentLogin(ctx, studentID, password)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Logged in as %s\n", login.Student.Name)

	// ─── Capture ───────────────────────────────────────────────────────
	scanCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	fmt.Println("Point the camera at the class QR code...")
	var code string
	if *fromStdin {
		code, err = scanner.Capture(scanCtx, scanner.NewLineSource(stdin))
	} else {
		code, err = scanner.CaptureCommand(scanCtx, *decoder, *decoderArgs...)
	}
	if err != nil {
		if errors.Is(err, scanner.ErrNoCode) || errors.Is(err, scanner.ErrCancelled) {
			fmt.Println(msgNothingDecoded)
			return 1
		}
		log.Error().Err(err).Str("decoder", *decoder).Msg("Scan failed")
		return 1
	}
	log.Debug().Str("code", code).Msg("Decoded")

	// ─── Network ───────────────────────────────────────────────────────
	network := *ssid
	if network == "" {
		probed, err := netinfo.NewCommandProber().SSID(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Could not determine Wi-Fi network")
		}
		network = probed
	}

	// ─── Submit ────────────────────────────────────────────────────────
	res, err := api.Scan(ctx, code, network)
	if err != nil {
		return fail(err)
	}
	fmt.Println(res.Message)
	if !res.Recorded {
		return 1
	}
	return 0
}

func readPassword(stdin *bufio.Reader) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(fd)
	fmt.Println()
	return string(raw), err
}

func fail(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Println(apiErr.Message)
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return 1
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
