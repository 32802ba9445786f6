// Package seed provides helpers to create demo data for the forum database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"

	"forum/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	PostsPerUser    int
	CommentsPerPost int
	// HiddenRatio is the share of posts and comments seeded inactive.
	HiddenRatio float64
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
	MaxDays     int
	RandSeed    int64
}

// DefaultOptions is a small forum suitable for local development.
func DefaultOptions() Options {
	return Options{
		NumUsers:        10,
		PostsPerUser:    4,
		CommentsPerPost: 3,
		HiddenRatio:     0.1,
		MaxDays:         90,
	}
}

// Result summarizes what Seed created.
type Result struct {
	Users    int
	Posts    int
	Comments int
	Reports  int
}

// Seed populates the database with demo users, posts, comments and reports.
func Seed(db *gorm.DB, opts Options) (Result, error) {
	var res Result
	log.Printf("Starting database seeding with %d users...", opts.NumUsers)

	if opts.ShouldClean && !opts.DryRun {
		if err := clearData(db); err != nil {
			return res, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return res, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	res.Users = len(users)
	if len(users) == 0 {
		return res, nil
	}

	posts := make([]*models.Post, 0, len(users)*opts.PostsPerUser)
	for _, user := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			posts = append(posts, f.BuildPost(user, func(p *models.Post) {
				p.Active = f.rand.Float64() >= opts.HiddenRatio
			}))
		}
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return res, fmt.Errorf("failed to create posts: %w", err)
	}
	res.Posts = len(posts)

	for _, post := range posts {
		for i := 0; i < opts.CommentsPerPost; i++ {
			author := users[f.rand.Intn(len(users))]
			if _, err := f.CreateComment(author, post, func(c *models.Comment) {
				c.Active = f.rand.Float64() >= opts.HiddenRatio
			}); err != nil {
				return res, fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++
		}

		if !post.Active {
			reporter := users[f.rand.Intn(len(users))]
			if _, err := f.CreatePostReport(reporter, post); err != nil {
				return res, fmt.Errorf("failed to create report: %w", err)
			}
			res.Reports++
		}
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d reports",
		res.Users, res.Posts, res.Comments, res.Reports)
	return res, nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comment_reports, post_reports, comments, posts, profiles, users RESTART IDENTITY CASCADE`).Error
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.CommentReport{}, &models.PostReport{}, &models.Comment{},
			&models.Post{}, &models.Profile{}, &models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
