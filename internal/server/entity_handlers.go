package server

import (
	"context"
	"strings"

	"forum/internal/authz"
	"forum/internal/forms"

	"github.com/gofiber/fiber/v2"
)

// editable is an entity loaded for its author, with the form values it
// pre-fills and the post page that follows a mutation.
type editable struct {
	object  any
	initial forms.Values
	postID  uint
}

// ownedEntity parameterizes the update and delete handlers for one kind of
// authored content.
type ownedEntity struct {
	name   string
	form   *forms.Form
	load   func(ctx context.Context, p authz.Principal, id uint) (*editable, error)
	update func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (*editable, error)
	// remove returns where to send the requester afterwards.
	remove func(ctx context.Context, p authz.Principal, id uint) (string, error)
}

// reportTarget parameterizes the report handlers for one kind of content.
type reportTarget struct {
	name string
	form *forms.Form
	load func(ctx context.Context, p authz.Principal, id uint) (any, error)
	// file returns the post whose page follows a filed report.
	file func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (uint, error)
}

func (s *Server) configureEntities() {
	s.posts = ownedEntity{
		name: "Post",
		form: forms.PostForm,
		load: func(ctx context.Context, p authz.Principal, id uint) (*editable, error) {
			post, err := s.postService.Editable(ctx, p, id)
			if err != nil {
				return nil, err
			}
			return &editable{
				object:  post,
				initial: forms.Values{"title": post.Title, "text": post.Text},
				postID:  post.ID,
			}, nil
		},
		update: func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (*editable, error) {
			post, err := s.postService.Update(ctx, p, id, raw)
			if err != nil {
				return nil, err
			}
			return &editable{object: post, postID: post.ID}, nil
		},
		remove: func(ctx context.Context, p authz.Principal, id uint) (string, error) {
			if err := s.postService.Delete(ctx, p, id); err != nil {
				return "", err
			}
			return "/", nil
		},
	}

	s.comments = ownedEntity{
		name: "Comment",
		form: forms.CommentForm,
		load: func(ctx context.Context, p authz.Principal, id uint) (*editable, error) {
			comment, err := s.commentService.Editable(ctx, p, id)
			if err != nil {
				return nil, err
			}
			return &editable{
				object:  comment,
				initial: forms.Values{"text": comment.Text},
				postID:  comment.PostID,
			}, nil
		},
		update: func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (*editable, error) {
			comment, err := s.commentService.Update(ctx, p, id, raw)
			if err != nil {
				return nil, err
			}
			return &editable{object: comment, postID: comment.PostID}, nil
		},
		remove: func(ctx context.Context, p authz.Principal, id uint) (string, error) {
			comment, err := s.commentService.Delete(ctx, p, id)
			if err != nil {
				return "", err
			}
			return postURL(comment.PostID), nil
		},
	}

	s.postReports = reportTarget{
		name: "Post",
		form: forms.PostReportForm,
		load: func(ctx context.Context, p authz.Principal, id uint) (any, error) {
			return s.reportService.ReportablePost(ctx, p, id)
		},
		file: func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (uint, error) {
			report, err := s.reportService.ReportPost(ctx, p, id, raw)
			if err != nil {
				return 0, err
			}
			return report.PostID, nil
		},
	}

	s.commentReports = reportTarget{
		name: "Comment",
		form: forms.CommentReportForm,
		load: func(ctx context.Context, p authz.Principal, id uint) (any, error) {
			return s.reportService.ReportableComment(ctx, p, id)
		},
		file: func(ctx context.Context, p authz.Principal, id uint, raw forms.Values) (uint, error) {
			_, comment, err := s.reportService.ReportComment(ctx, p, id, raw)
			if err != nil {
				return 0, err
			}
			return comment.PostID, nil
		},
	}
}

func (e *ownedEntity) key() string {
	return strings.ToLower(e.name)
}

// editForm renders the pre-filled edit form for the author.
func (s *Server) editForm(e *ownedEntity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", e.name)
		if err != nil {
			return nil
		}
		item, err := e.load(c.UserContext(), principal(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			e.key(): item.object,
			"form":  e.form.Blank(item.initial),
		})
	}
}

func (s *Server) update(e *ownedEntity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", e.name)
		if err != nil {
			return nil
		}
		raw, err := bindValues(c)
		if err != nil {
			return respondError(c, err)
		}
		item, err := e.update(c.UserContext(), principal(c), id, raw)
		if err != nil {
			return respondForm(c, e.form, raw, err)
		}
		return redirect(c, postURL(item.postID))
	}
}

// deleteConfirm renders the confirmation page of a delete.
func (s *Server) deleteConfirm(e *ownedEntity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", e.name)
		if err != nil {
			return nil
		}
		item, err := e.load(c.UserContext(), principal(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{e.key(): item.object, "confirm": true})
	}
}

func (s *Server) remove(e *ownedEntity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", e.name)
		if err != nil {
			return nil
		}
		location, err := e.remove(c.UserContext(), principal(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return redirect(c, location)
	}
}

func (s *Server) reportForm(r *reportTarget) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", r.name)
		if err != nil {
			return nil
		}
		target, err := r.load(c.UserContext(), principal(c), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			strings.ToLower(r.name): target,
			"form":                  r.form.Blank(nil),
		})
	}
}

func (s *Server) report(r *reportTarget) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c, "id", r.name)
		if err != nil {
			return nil
		}
		raw, err := bindValues(c)
		if err != nil {
			return respondError(c, err)
		}
		postID, err := r.file(c.UserContext(), principal(c), id, raw)
		if err != nil {
			return respondForm(c, r.form, raw, err)
		}
		return redirect(c, postURL(postID))
	}
}
