// Command seed fills the forum database with demo data.
package main

import (
	"flag"
	"log"

	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	postsPerUser := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	commentsPerPost := flag.Int("comments", defaults.CommentsPerPost, "Comments per post")
	hidden := flag.Float64("hidden", defaults.HiddenRatio, "Share of posts and comments seeded inactive")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain passwords instead of bcrypt hashes (local use only)")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		HiddenRatio:     *hidden,
		ShouldClean:     *shouldClean,
		SkipBcrypt:      *fast,
		DryRun:          *dryRun,
		MaxDays:         defaults.MaxDays,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Done: %d users, %d posts, %d comments, %d reports", res.Users, res.Posts, res.Comments, res.Reports)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
