// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"studyhub/internal/config"
	"studyhub/internal/database"
	"studyhub/internal/middleware"
	"studyhub/internal/seed"
)

func main() {
	preset := flag.String("preset", "minimal", "Built-in preset ("+strings.Join(seed.PresetNames(), ", ")+") or path to a YAML preset")
	shouldClean := flag.Bool("clean", false, "Delete all rows before seeding")
	clearOnly := flag.Bool("clear-only", false, "Delete all rows and exit")
	seedValue := flag.Int64("seed", 0, "Override the preset's random seed")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db)

	if *clearOnly {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		return
	}

	p, err := seed.ResolvePreset(*preset)
	if err != nil {
		log.Fatalf("Failed to load preset: %v", err)
	}
	p.Clean = p.Clean || *shouldClean
	if *seedValue != 0 {
		p.Seed = *seedValue
	}

	sum, err := s.Run(ctx, p)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Printf("Seeded %d users, %d posts, %d courses, %d events, %d groups, %d forums, %d resources\n",
		sum.Users, sum.Posts, sum.Courses, sum.Events, sum.Groups, sum.Forums, sum.Resources)
	fmt.Printf("All seeded users share the password %q\n", p.Password)
}
