// Package seed fills a database with demo users, groups, posts, comments and
// follows. It is meant for development only.
package seed

import (
	"fmt"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options controls how much data Seed creates.
type Options struct {
	Users           int
	Groups          int
	PostsPerUser    int
	CommentsPerPost int
	FollowsPerUser  int
	Clean           bool
	// RandSeed makes a run reproducible. Zero means random.
	RandSeed int64
	// HashCost overrides bcrypt.DefaultCost, mostly for tests.
	HashCost int
}

// DefaultOptions is what cmd/seed uses without flags.
func DefaultOptions() Options {
	return Options{
		Users:           12,
		Groups:          4,
		PostsPerUser:    8,
		CommentsPerPost: 2,
		FollowsPerUser:  3,
		Clean:           true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
}

// Seed populates db according to opts.
func Seed(db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	log := middleware.Logger.With(slog.String("component", "seed"))

	if opts.Clean {
		if err := Clear(db); err != nil {
			return sum, err
		}
		log.Info("existing data cleared")
	}

	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return sum, fmt.Errorf("hash password: %w", err)
	}
	f := NewFactory(db, opts.RandSeed, string(hash))

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, err
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	groups := make([]*models.Group, 0, opts.Groups)
	for i := 0; i < opts.Groups; i++ {
		g, err := f.CreateGroup()
		if err != nil {
			return sum, err
		}
		groups = append(groups, g)
	}
	sum.Groups = len(groups)

	var posts []*models.Post
	for _, u := range users {
		for i := 0; i < opts.PostsPerUser; i++ {
			var g *models.Group
			// roughly a third of posts stay outside any group
			if len(groups) > 0 && f.faker.Number(0, 2) > 0 {
				g = Pick(f, groups)
			}
			posts = append(posts, f.BuildPost(u, g, 90))
		}
	}
	if err := f.CreatePosts(posts); err != nil {
		return sum, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)

	if len(users) > 0 {
		for _, p := range posts {
			for i := 0; i < opts.CommentsPerPost; i++ {
				if _, err := f.CreateComment(p, Pick(f, users)); err != nil {
					return sum, err
				}
				sum.Comments++
			}
		}
	}

	if len(users) > 1 {
		for _, u := range users {
			for i := 0; i < opts.FollowsPerUser; i++ {
				created, err := f.Follow(u, Pick(f, users))
				if err != nil {
					return sum, err
				}
				if created {
					sum.Follows++
				}
			}
		}
	}

	log.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("groups", sum.Groups),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
		slog.Int("follows", sum.Follows),
	)
	return sum, nil
}

// Clear deletes every row the app owns, children first.
func Clear(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
