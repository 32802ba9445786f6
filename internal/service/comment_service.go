package service

import (
	"context"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	authorizer  authz.Authorizer
	isBanned    BanChecker
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	authorizer authz.Authorizer,
	isBanned BanChecker,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		authorizer:  authorizer,
		isBanned:    isBanned,
	}
}

// Create attaches a comment by p to the post.
func (s *CommentService) Create(ctx context.Context, p authz.Principal, postID uint, raw forms.Values) (*models.Comment, error) {
	if err := requireAuthor(ctx, p, s.isBanned); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	values, err := validate(forms.CommentForm, raw)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     values["text"],
		AuthorID: p.UserID,
		PostID:   postID,
		Active:   true,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "create").Inc()
	return comment, nil
}

// Editable returns the comment when p may update or delete it.
func (s *CommentService) Editable(ctx context.Context, p authz.Principal, id uint) (*models.Comment, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(s.authorizer, p, comment, "comment"); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update rewrites the comment text and re-stamps the author.
func (s *CommentService) Update(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (*models.Comment, error) {
	comment, err := s.Editable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	values, err := validate(forms.CommentForm, raw)
	if err != nil {
		return nil, err
	}

	comment.Text = values["text"]
	comment.AuthorID = p.UserID
	if err := s.commentRepo.UpdateContent(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "update").Inc()
	return comment, nil
}

// Delete removes the comment and its reports. The removed comment is returned
// so callers still know its post.
func (s *CommentService) Delete(ctx context.Context, p authz.Principal, id uint) (*models.Comment, error) {
	comment, err := s.Editable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("comment", "delete").Inc()
	return comment, nil
}
