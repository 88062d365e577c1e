// Command seed populates the database with demo content.
package main

import (
	"flag"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	numAuthors := flag.Int("authors", 5, "number of demo authors to create")
	numPosts := flag.Int("posts", 40, "number of demo posts to create")
	clean := flag.Bool("clean", false, "truncate seeded tables first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" || cfg.Env == "prod" {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Run(db, seed.Options{
		NumAuthors: *numAuthors,
		NumPosts:   *numPosts,
		Clean:      *clean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d authors and %d posts (demo password: %s)", *numAuthors, *numPosts, seed.DemoPassword)
}
