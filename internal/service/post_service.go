package service

import (
	"context"

	"forum/internal/authz"
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/observability"
	"forum/internal/repository"
)

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	authorizer  authz.Authorizer
	isBanned    BanChecker
}

// PostDetail is a post with its visible comments, oldest first.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// UserPosts is one page of an author's visible posts.
type UserPosts struct {
	Author *models.User        `json:"author"`
	Page   *Page[*models.Post] `json:"page"`
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	authorizer authz.Authorizer,
	isBanned BanChecker,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		authorizer:  authorizer,
		isBanned:    isBanned,
	}
}

// ListPosts returns one page of active posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, page string) (*Page[*models.Post], error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "PostService", "ListPosts")
	defer span.End()

	total, err := s.postRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	p, err := NewPage[*models.Post](page, total, PostsPerPage)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return p, nil
	}

	posts, err := s.postRepo.ListActive(ctx, p.PerPage, p.Offset())
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	p.Items = posts
	return p, nil
}

// ListUserPosts returns one page of the named author's active posts.
func (s *PostService) ListUserPosts(ctx context.Context, username, page string) (*UserPosts, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	total, err := s.postRepo.CountActiveByAuthor(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	p, err := NewPage[*models.Post](page, total, PostsPerPage)
	if err != nil {
		return nil, err
	}
	if total > 0 {
		posts, err := s.postRepo.ListActiveByAuthor(ctx, author.ID, p.PerPage, p.Offset())
		if err != nil {
			return nil, err
		}
		p.Items = posts
	}
	return &UserPosts{Author: author, Page: p}, nil
}

// Detail returns the post by id, active or not, with its active comments.
func (s *PostService) Detail(ctx context.Context, id uint) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListActiveByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// Create stores a new post authored by p.
func (s *PostService) Create(ctx context.Context, p authz.Principal, raw forms.Values) (*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "PostService", "Create")
	defer span.End()

	if err := requireAuthor(ctx, p, s.isBanned); err != nil {
		return nil, err
	}
	values, err := validate(forms.PostForm, raw)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    values["title"],
		Text:     values["text"],
		AuthorID: p.UserID,
		Active:   true,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("post", "create").Inc()
	return post, nil
}

// Editable returns the post when p may update or delete it.
func (s *PostService) Editable(ctx context.Context, p authz.Principal, id uint) (*models.Post, error) {
	if err := requireAuthenticated(p); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(s.authorizer, p, post, "post"); err != nil {
		return nil, err
	}
	return post, nil
}

// Update rewrites title and text. The author is re-stamped with p; active and
// created_at are left as they were.
func (s *PostService) Update(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (*models.Post, error) {
	post, err := s.Editable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	values, err := validate(forms.PostForm, raw)
	if err != nil {
		return nil, err
	}

	post.Title = values["title"]
	post.Text = values["text"]
	post.AuthorID = p.UserID
	if err := s.postRepo.UpdateContent(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("post", "update").Inc()
	return post, nil
}

// Delete removes the post together with its comments and reports.
func (s *PostService) Delete(ctx context.Context, p authz.Principal, id uint) error {
	if _, err := s.Editable(ctx, p, id); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, id); err != nil {
		return err
	}
	observability.ContentWrites.WithLabelValues("post", "delete").Inc()
	return nil
}
