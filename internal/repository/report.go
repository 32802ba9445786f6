package repository

import (
	"context"

	"forum/internal/models"
	"forum/internal/observability"

	"gorm.io/gorm"
)

// ReportRepository persists moderation reports. Reports are append-only.
type ReportRepository interface {
	CreatePostReport(ctx context.Context, report *models.PostReport) error
	CreateCommentReport(ctx context.Context, report *models.CommentReport) error
	ListPostReports(ctx context.Context, postID uint) ([]*models.PostReport, error)
	ListCommentReports(ctx context.Context, commentID uint) ([]*models.CommentReport, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreatePostReport(ctx context.Context, report *models.PostReport) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) CreateCommentReport(ctx context.Context, report *models.CommentReport) error {
	if err := r.db.WithContext(ctx).Omit("Author").Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) ListPostReports(ctx context.Context, postID uint) ([]*models.PostReport, error) {
	defer observability.TrackQuery("ListPostReports", "post_reports")()

	var reports []*models.PostReport
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) ListCommentReports(ctx context.Context, commentID uint) ([]*models.CommentReport, error) {
	defer observability.TrackQuery("ListCommentReports", "comment_reports")()

	var reports []*models.CommentReport
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}
