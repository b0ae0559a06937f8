package service

import (
	"context"
	"log/slog"

	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// Add comments on postID as authorID. An unknown post is NOT_FOUND; invalid
// text comes back as forms.Errors.
func (s *CommentService) Add(ctx context.Context, authorID, postID uint, in forms.CommentInput) (*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	data, errs := forms.ValidateComment(in)
	if errs.Any() {
		observability.FormRejections.WithLabelValues("comment").Inc()
		return nil, errs
	}

	comment := &models.Comment{Text: data.Text, PostID: post.ID, AuthorID: authorID}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	observability.ContentWrites.WithLabelValues("comment").Inc()
	middleware.Logger.DebugContext(ctx, "comment added",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("comment_id", uint64(comment.ID)),
	)
	return comment, nil
}
