package repository

import (
	"context"
	"errors"

	"forum/internal/models"
	"forum/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListActive(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CountActive(ctx context.Context) (int64, error)
	ListActiveByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error)
	CountActiveByAuthor(ctx context.Context, authorID uint) (int64, error)
	UpdateContent(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Author", "Comments", "Reports").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID returns the post regardless of its active flag.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "GetByID", "posts")
	defer span.End()
	defer observability.TrackQuery("GetByID", "posts")()

	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListActive(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListActive", "posts")
	defer span.End()
	defer observability.TrackQuery("ListActive", "posts")()

	var posts []*models.Post
	err := r.activeQuery(ctx).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountActive(ctx context.Context) (int64, error) {
	defer observability.TrackQuery("CountActive", "posts")()

	var count int64
	if err := r.activeQuery(ctx).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) ListActiveByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "ListActiveByAuthor", "posts")
	defer span.End()
	defer observability.TrackQuery("ListActiveByAuthor", "posts")()

	var posts []*models.Post
	err := r.activeQuery(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountActiveByAuthor(ctx context.Context, authorID uint) (int64, error) {
	defer observability.TrackQuery("CountActiveByAuthor", "posts")()

	var count int64
	if err := r.activeQuery(ctx).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *postRepository) activeQuery(ctx context.Context) *gorm.DB {
	return readDB(r.db).WithContext(ctx).Model(&models.Post{}).Where("active = ?", true)
}

// UpdateContent writes only the editable columns; active and created_at are
// left untouched.
func (r *postRepository) UpdateContent(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":     post.Title,
			"text":      post.Text,
			"author_id": post.AuthorID,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post with its comments and every report filed against
// either.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.CommentReport{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostReport{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	return wrapTxError(err)
}

// wrapTxError passes AppErrors through and wraps everything else as internal.
func wrapTxError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
