package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/pflag"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/database"
	"github.com/stemsi/qrattend-backend/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.SetupWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	flags := pflag.NewFlagSet("migrate", pflag.ExitOnError)
	migrationDir := flags.StringP("path", "p", cfg.MigrationsPath, "Path to migration files")
	dbURL := flags.String("database-url", cfg.DatabaseURL, "PostgreSQL connection URL")
	flags.Usage = func() { printUsage(flags) }
	_ = flags.Parse(os.Args[1:])

	if *dbURL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	args := flags.Args()
	if len(args) < 1 {
		printUsage(flags)
		return
	}

	m, err := database.NewMigrator(*migrationDir, *dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Up failed")
		}
		fmt.Println("Migrated up successfully")
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("Down failed")
		}
		fmt.Println("Migrated down successfully")
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return
		}
		if err != nil {
			log.Fatal().Err(err).Msg("Version failed")
		}
		fmt.Printf("Version: %d, Dirty: %t\n", version, dirty)
	case "force":
		if len(args) < 2 {
			log.Fatal().Msg("force requires version argument")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid version")
		}
		if err := m.Force(v); err != nil {
			log.Fatal().Err(err).Msg("Force failed")
		}
		fmt.Printf("Forced version to %d\n", v)
	default:
		printUsage(flags)
		os.Exit(2)
	}
}

func printUsage(flags *pflag.FlagSet) {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, version, force <version>")
	fmt.Println("Flags:")
	flags.PrintDefaults()
}
