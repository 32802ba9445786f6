package repository

import (
	"context"
	"errors"

	"forum/internal/models"
	"forum/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	UpdateContent(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Post", "Reports").Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer observability.TrackQuery("GetByID", "comments")()

	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListActiveByPost returns the visible comments of a post, oldest first.
func (r *commentRepository) ListActiveByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListActiveByPost", "comments")
	defer span.End()
	defer observability.TrackQuery("ListActiveByPost", "comments")()

	var comments []*models.Comment
	err := readDB(r.db).WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND active = ?", postID, true).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, comment *models.Comment) error {
	res := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Updates(map[string]any{
			"text":      comment.Text,
			"author_id": comment.AuthorID,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

// Delete removes the comment and the reports filed against it.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return nil
	})
	return wrapTxError(err)
}
