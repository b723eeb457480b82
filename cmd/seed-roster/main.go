package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/database"
	"github.com/stemsi/qrattend-backend/internal/logger"
	"github.com/stemsi/qrattend-backend/internal/repository"
	"github.com/stemsi/qrattend-backend/internal/roster"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	flags := pflag.NewFlagSet("seed-roster", pflag.ExitOnError)
	rosterFile := flags.StringP("roster", "r", cfg.RosterFile, "Roster YAML file (empty uses the built-in roster)")
	migrateFirst := flags.Bool("migrate", false, "Apply pending migrations before seeding")
	list := flags.BoolP("list", "l", false, "Print the classes and students stored after seeding")
	_ = flags.Parse(args)

	ros, err := roster.Load(*rosterFile)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load roster")
		return 1
	}

	if *migrateFirst {
		if err := database.MigrateUp(cfg.MigrationsPath, cfg.DatabaseURL, log); err != nil {
			log.Error().Err(err).Msg("Failed to migrate database")
			return 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to PostgreSQL")
		return 1
	}
	defer pool.Close()

	students := repository.NewStudentRepository(pool)
	classes := repository.NewClassRepository(pool)

	fmt.Printf("=== Seeding %d Students into %d Classes ===\n", len(ros.Students), len(ros.Subjects))

	stats, err := repository.SyncRoster(ctx, students, classes, ros)
	if err != nil {
		log.Error().Err(err).Msg("Seed aborted")
		fmt.Printf("\nPartial seed: %d classes, %d students, %d enrollments.\n", stats.Classes, stats.Students, stats.Enrollments)
		return 1
	}
	fmt.Printf("\nSeed completed! %d classes, %d students, %d enrollments.\n", stats.Classes, stats.Students, stats.Enrollments)

	if !*list {
		return 0
	}

	// ─── Stored roster ─────────────────────────────────────────────────
	stored, err := classes.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list classes")
		return 1
	}
	fmt.Printf("\nClasses (%d):\n", len(stored))
	for _, c := range stored {
		fmt.Printf("  %-6s %s\n", c.ClassID, c.Login)
	}

	enrolled, err := students.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list students")
		return 1
	}
	fmt.Printf("\nStudents (%d):\n", len(enrolled))
	for _, s := range enrolled {
		fmt.Printf("  %-4s %s\n", s.ID, s.Name)
	}
	return 0
}
