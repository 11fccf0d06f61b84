// Command main runs the database seeder for Neighborly.
package main

import (
	"flag"
	"log"

	"neighborly/internal/config"
	"neighborly/internal/database"
	"neighborly/internal/middleware"
	"neighborly/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 60, "Number of users to create")
	numPosts := flag.Int("posts", 150, "Number of posts to create")
	numPolls := flag.Int("polls", 30, "Number of polls to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d posts, %d polls, clean=%v\n", *numUsers, *numPosts, *numPolls, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := s.SeedCommunity(*numUsers, *numPosts, *numPolls); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done. Test users share the password: password123")
}
