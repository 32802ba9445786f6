package service

import (
	"context"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
)

// ReportService files moderation reports against posts and comments.
type ReportService struct {
	reportRepo  repository.ReportRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	isBanned    BanChecker
}

func NewReportService(
	reportRepo repository.ReportRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	isBanned BanChecker,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		isBanned:    isBanned,
	}
}

// ReportPost files a report by p against the post.
func (s *ReportService) ReportPost(ctx context.Context, p authz.Principal, postID uint, raw forms.Values) (*models.PostReport, error) {
	if err := requireAuthor(ctx, p, s.isBanned); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	values, err := validate(forms.PostReportForm, raw)
	if err != nil {
		return nil, err
	}

	report := &models.PostReport{
		PostID:   postID,
		AuthorID: p.UserID,
		Reason:   values["reason"],
	}
	if err := s.reportRepo.CreatePostReport(ctx, report); err != nil {
		return nil, err
	}
	observability.ReportsFiled.WithLabelValues("post").Inc()
	return report, nil
}

// ReportComment files a report by p against the comment. The comment is
// returned alongside so callers can redirect to its post.
func (s *ReportService) ReportComment(ctx context.Context, p authz.Principal, commentID uint, raw forms.Values) (*models.CommentReport, *models.Comment, error) {
	if err := requireAuthor(ctx, p, s.isBanned); err != nil {
		return nil, nil, err
	}
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	values, err := validate(forms.CommentReportForm, raw)
	if err != nil {
		return nil, comment, err
	}

	report := &models.CommentReport{
		CommentID: commentID,
		AuthorID:  p.UserID,
		Reason:    values["reason"],
	}
	if err := s.reportRepo.CreateCommentReport(ctx, report); err != nil {
		return nil, comment, err
	}
	observability.ReportsFiled.WithLabelValues("comment").Inc()
	return report, comment, nil
}

// ReportablePost returns the post a report form targets.
func (s *ReportService) ReportablePost(ctx context.Context, p authz.Principal, postID uint) (*models.Post, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID)
}

// ReportableComment returns the comment a report form targets.
func (s *ReportService) ReportableComment(ctx context.Context, p authz.Principal, commentID uint) (*models.Comment, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, commentID)
}
