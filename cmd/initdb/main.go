// Command initdb creates the database schema and optionally seeds it with
// development data. Run it once before first server start.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	var (
		doSeed   = flag.Bool("seed", false, "insert a test/test user and generated demo posts")
		numUsers = flag.Int("users", seed.DefaultOptions.NumUsers, "number of demo users to generate with --seed")
		numPosts = flag.Int("posts", seed.DefaultOptions.NumPosts, "number of demo posts to generate with --seed")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect runs the schema migration.
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if *doSeed {
		if err := seed.Seed(db, seed.Options{NumUsers: *numUsers, NumPosts: *numPosts}); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		log.Println("Database seeded")
	}

	log.Println("Database initialized")
}
