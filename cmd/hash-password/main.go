package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/service"
	"golang.org/x/term"
)

// hash-password prints a bcrypt hash for the password_hash field of a roster entry.
func main() {
	cfg := config.Load()

	fmt.Fprintln(os.Stderr, "=== Hash Roster Password ===")

	password, err := readPassword("Enter Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "\nError reading password:", err)
		os.Exit(1)
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "Error: Password is required")
		os.Exit(1)
	}

	if term.IsTerminal(int(syscall.Stdin)) {
		confirm, err := readPassword("Confirm Password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "\nError reading password:", err)
			os.Exit(1)
		}
		if confirm != password {
			fmt.Fprintln(os.Stderr, "Error: Passwords do not match")
			os.Exit(1)
		}
	}

	hash, err := service.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error hashing password:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// readPassword reads without echo from a terminal, or one line from a pipe.
func readPassword(prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
