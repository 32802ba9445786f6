package server

import (
	"forum/internal/forms"
	"forum/internal/models"
	"forum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET / with an optional ?page= (number or "last").
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"page": page})
}

// ListUserPosts handles GET /user/:username.
func (s *Server) ListUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListUserPosts(c.UserContext(), c.Params("username"), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// PostDetail handles GET /post/:id.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}

	detail, err := s.postService.Detail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detailDocument(detail, forms.CommentForm.Blank(nil)))
}

// CreateComment handles POST /post/:id, the comment box on the detail page.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id", "Post")
	if err != nil {
		return nil
	}
	raw, err := bindValues(c)
	if err != nil {
		return respondError(c, err)
	}

	ctx := c.UserContext()
	if _, err := s.commentService.Create(ctx, principal(c), id, raw); err != nil {
		errs := service.FieldErrors(err)
		if errs == nil {
			return respondError(c, err)
		}
		detail, derr := s.postService.Detail(ctx, id)
		if derr != nil {
			return respondError(c, derr)
		}
		doc := detailDocument(detail, forms.CommentForm.Bound(raw, errs))
		doc["error"] = "Invalid input"
		doc["code"] = models.CodeValidation
		doc["fields"] = errs
		return c.Status(fiber.StatusBadRequest).JSON(doc)
	}
	return redirect(c, postURL(id))
}

// NewPostForm handles GET /post/new.
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	if !principal(c).Authenticated() {
		return respondError(c, models.NewUnauthenticatedError("Authentication required"))
	}
	return c.JSON(fiber.Map{"form": forms.PostForm.Blank(nil)})
}

// CreatePost handles POST /post/new.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	raw, err := bindValues(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.Create(c.UserContext(), principal(c), raw)
	if err != nil {
		return respondForm(c, forms.PostForm, raw, err)
	}
	return redirect(c, postURL(post.ID))
}

func detailDocument(detail *service.PostDetail, commentForm forms.State) fiber.Map {
	return fiber.Map{
		"post":         detail.Post,
		"comments":     detail.Comments,
		"comment_form": commentForm,
	}
}

// respondForm re-renders a rejected submission with its errors, or falls back
// to respondError when err is not a field validation failure.
func respondForm(c *fiber.Ctx, form *forms.Form, raw forms.Values, err error) error {
	errs := service.FieldErrors(err)
	if errs == nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Invalid input",
		"code":   models.CodeValidation,
		"fields": errs,
		"form":   form.Bound(raw, errs),
	})
}
