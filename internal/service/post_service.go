// Package service holds the page-level business rules between handlers and repositories.
package service

import (
	"context"
	"errors"
	"log/slog"

	"yatube/internal/forms"
	"yatube/internal/media"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostPage is one page of posts.
type PostPage = pagination.Page[*models.Post]

type PostService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	images   *media.ImageSaver
	pageSize int
	limits   forms.Limits
}

// PostOptions carries the settings PostService reads from configuration.
type PostOptions struct {
	PageSize int
	Limits   forms.Limits
}

// ProfileView is what the profile page shows.
type ProfileView struct {
	Author    *models.User
	Page      *PostPage
	Count     int64
	Following bool
	Followers int64
	Follows   int64
}

// DetailView is what the post page shows.
type DetailView struct {
	Post         *models.Post
	Comments     []*models.Comment
	Count        int64
	CommentCount int64
}

// NewPostService wires the repositories. images may be nil, in which case
// uploaded images are validated but not stored.
func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	follows repository.FollowRepository,
	comments repository.CommentRepository,
	images *media.ImageSaver,
	opts PostOptions,
) *PostService {
	if opts.PageSize <= 0 {
		opts.PageSize = pagination.DefaultSize
	}
	return &PostService{
		posts:    posts,
		groups:   groups,
		users:    users,
		follows:  follows,
		comments: comments,
		images:   images,
		pageSize: opts.PageSize,
		limits:   opts.Limits,
	}
}

// Index returns every post, newest first.
func (s *PostService) Index(ctx context.Context, page string) (*PostPage, error) {
	return s.page(ctx, repository.PostFilter{}, page)
}

// GroupPosts returns the group with the given slug and a page of its posts.
func (s *PostService) GroupPosts(ctx context.Context, slug, page string) (*models.Group, *PostPage, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.page(ctx, repository.PostFilter{GroupID: group.ID}, page)
	if err != nil {
		return nil, nil, err
	}
	return group, p, nil
}

// Profile returns the author's posts. viewerID is 0 for anonymous viewers.
func (s *PostService) Profile(ctx context.Context, username, page string, viewerID uint) (*ProfileView, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	p, err := s.page(ctx, repository.PostFilter{AuthorID: author.ID}, page)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Author: author, Page: p, Count: p.Total}
	if view.Followers, err = s.follows.CountFollowers(ctx, author.ID); err != nil {
		return nil, err
	}
	if view.Follows, err = s.follows.CountFollowing(ctx, author.ID); err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != author.ID {
		following, err := s.follows.Exists(ctx, viewerID, author.ID)
		if err != nil {
			return nil, err
		}
		view.Following = following
	}
	return view, nil
}

// FollowFeed returns posts by the authors userID follows.
func (s *PostService) FollowFeed(ctx context.Context, userID uint, page string) (*PostPage, error) {
	return s.page(ctx, repository.PostFilter{FollowerID: userID}, page)
}

// Detail returns the post with its comments, oldest first, its comment count
// and its author's post count.
func (s *PostService) Detail(ctx context.Context, postID uint) (*DetailView, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	count, err := s.users.CountPosts(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.comments.CountByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return &DetailView{Post: post, Comments: comments, Count: count, CommentCount: commentCount}, nil
}

// Groups lists the groups a post may be filed under.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

// Create validates in and stores a post by authorID. Invalid input is
// returned as forms.Errors and nothing is written.
func (s *PostService) Create(ctx context.Context, authorID uint, in forms.PostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "post.create", attribute.Int("author.id", int(authorID)))
	defer func() { observability.EndSpan(span, err) }()

	data, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	post = &models.Post{AuthorID: authorID}
	data.Apply(post)

	stored, err := s.storeImage(ctx, data.Image)
	if err != nil {
		return nil, err
	}
	post.Image, post.ImageThumb = stored.Image, stored.Thumb

	if err := s.posts.Create(ctx, post); err != nil {
		s.removeImages(ctx, stored)
		return nil, err
	}

	observability.ContentWrites.WithLabelValues("post_create").Inc()
	middleware.Logger.InfoContext(ctx, "post created", slog.Uint64("post_id", uint64(post.ID)))
	return post, nil
}

// ForEdit loads a post for editing. A post not written by editorID is a FORBIDDEN error.
func (s *PostService) ForEdit(ctx context.Context, editorID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsAuthoredBy(editorID) {
		return nil, models.NewForbiddenError("Only the author can edit this post")
	}
	return post, nil
}

// Edit updates the post in place. A new image replaces the stored one.
func (s *PostService) Edit(ctx context.Context, editorID, postID uint, in forms.PostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "post.edit", attribute.Int("post.id", int(postID)))
	defer func() { observability.EndSpan(span, err) }()

	post, err = s.ForEdit(ctx, editorID, postID)
	if err != nil {
		return nil, err
	}
	data, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	data.Apply(post)
	previous := media.Stored{Image: post.Image, Thumb: post.ImageThumb}

	stored, err := s.storeImage(ctx, data.Image)
	if err != nil {
		return nil, err
	}
	if stored.Image != "" {
		post.Image, post.ImageThumb = stored.Image, stored.Thumb
	}

	if err := s.posts.Update(ctx, post); err != nil {
		s.removeImages(ctx, stored)
		return nil, err
	}
	if stored.Image != "" {
		s.removeImages(ctx, previous)
	}

	observability.ContentWrites.WithLabelValues("post_edit").Inc()
	return post, nil
}

func (s *PostService) validate(ctx context.Context, in forms.PostInput) (forms.PostData, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return forms.PostData{}, err
	}
	data, errs := forms.ValidatePost(in, groups, s.limits)
	if errs.Any() {
		observability.FormRejections.WithLabelValues("post").Inc()
		return forms.PostData{}, errs
	}
	return data, nil
}

func (s *PostService) storeImage(ctx context.Context, img *forms.ImageFile) (media.Stored, error) {
	if img == nil || s.images == nil {
		return media.Stored{}, nil
	}
	stored, err := s.images.Save(ctx, img.ContentType, img.Data)
	if err != nil {
		return media.Stored{}, models.NewInternalError(err)
	}
	return stored, nil
}

func (s *PostService) removeImages(ctx context.Context, stored media.Stored) {
	if s.images == nil {
		return
	}
	s.images.Remove(ctx, stored.Image, stored.Thumb)
}

func (s *PostService) page(ctx context.Context, filter repository.PostFilter, raw string) (*PostPage, error) {
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	w := pagination.Resolve(raw, total, s.pageSize)
	if w.Empty() {
		return pagination.NewPage[*models.Post](w, nil), nil
	}
	items, err := s.posts.List(ctx, filter, w.Size, w.Offset())
	if err != nil {
		return nil, err
	}
	return pagination.NewPage(w, items), nil
}

// FormErrors extracts validation errors from err.
func FormErrors(err error) (forms.Errors, bool) {
	var errs forms.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}
