package seed

import (
	"fmt"
	"strings"
	"time"

	"yatube/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds demo rows with gofakeit and persists them.
type Factory struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	password string
	n        int
}

// NewFactory binds a factory to db. passwordHash is stored on every user it
// creates. A zero seed picks a random one.
func NewFactory(db *gorm.DB, seed int64, passwordHash string) *Factory {
	return &Factory{db: db, faker: gofakeit.New(seed), password: passwordHash}
}

func (f *Factory) next() int {
	f.n++
	return f.n
}

// CreateUser persists a user with a fake name.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := strings.ReplaceAll(slugify(first+" "+last), "-", ".") + fmt.Sprintf("%d", f.next())
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  f.password,
		FirstName: first,
		LastName:  last,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// CreateGroup persists a group named after a random hobby.
func (f *Factory) CreateGroup(overrides ...func(*models.Group)) (*models.Group, error) {
	title := f.faker.Hobby()
	group := &models.Group{
		Title:       title,
		Slug:        slugify(title) + fmt.Sprintf("-%d", f.next()),
		Description: f.faker.Sentence(12),
	}
	for _, override := range overrides {
		override(group)
	}
	if err := f.db.Create(group).Error; err != nil {
		return nil, fmt.Errorf("create group %s: %w", group.Slug, err)
	}
	return group, nil
}

// BuildPost returns an unsaved post by author, optionally in group, dated
// somewhere in the last maxDays days.
func (f *Factory) BuildPost(author *models.User, group *models.Group, maxDays int) *models.Post {
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	post := &models.Post{
		Text:      f.faker.Paragraph(1, 3, 12, "\n"),
		AuthorID:  author.ID,
		CreatedAt: time.Now().Add(-back),
	}
	if group != nil {
		gid := group.ID
		post.GroupID = &gid
	}
	return post
}

// CreatePosts inserts posts in one batch.
func (f *Factory) CreatePosts(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("Author", "Group").CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment on post.
func (f *Factory) CreateComment(post *models.Post, author *models.User) (*models.Comment, error) {
	at := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 600)) * time.Minute)
	if now := time.Now(); at.After(now) {
		at = now
	}
	comment := &models.Comment{
		Text:      f.faker.Sentence(f.faker.Number(4, 16)),
		PostID:    post.ID,
		AuthorID:  author.ID,
		CreatedAt: at,
	}
	if err := f.db.Omit("Post", "Author").Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

// Follow makes user follow author. Self-follows and repeats are skipped.
func (f *Factory) Follow(user, author *models.User) (bool, error) {
	if user.ID == author.ID {
		return false, nil
	}
	var n int64
	if err := f.db.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", user.ID, author.ID).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := f.db.Omit("User", "Author").Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error; err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	return true, nil
}

// Pick returns a random element of items.
func Pick[T any](f *Factory, items []T) T {
	return items[f.faker.Number(0, len(items)-1)]
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
