package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/altera-oes/backend/internal/logging"
	"github.com/altera-oes/backend/internal/middleware"
	"github.com/altera-oes/backend/internal/model"
	"github.com/altera-oes/backend/internal/queue"
	"github.com/altera-oes/backend/internal/repository"
)

// CommentStore persists and lists comments.
type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	ListWithAuthor(ctx context.Context) ([]model.CommentWithAuthor, error)
}

// CommentPublisher announces new comments.
type CommentPublisher interface {
	PublishCommentCreated(ctx context.Context, ev queue.CommentCreatedEvent) error
}

// CachePurger invalidates cached listings.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// CommentHandler serves comment creation (authenticated) and listing (public).
type CommentHandler struct {
	Comments CommentStore
	Events   CommentPublisher
	Cache    CachePurger
	Log      logging.Logger
}

type commentReq struct {
	Content string `json:"content" validate:"required"`
}

// Create stores a comment owned by the authenticated user. It must be
// mounted behind middleware.JWTAuth.
func (h *CommentHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}

	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comment := model.Comment{Content: req.Content, UserID: uid}
	if err := h.Comments.Create(ctx, &comment); err != nil {
		if errors.Is(err, repository.ErrUnknownUser) {
			// valid signature but the account is gone
			return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
		}
		h.Log.Error(ctx, "create comment failed", "user_id", uid, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create comment"})
	}

	if err := h.Events.PublishCommentCreated(ctx, queue.CommentCreatedEvent{
		CommentID: comment.ID,
		UserID:    uid,
		Email:     middleware.Email(c),
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		h.Log.Warn(ctx, "publish comment event failed", "comment_id", comment.ID, "err", err)
	}
	// A listing read before the insert may still land in the cache after
	// this purge; it lives at most CACHE_TTL.
	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn(ctx, "purge comment cache failed", "err", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"comment": comment})
}

// List returns all comments with their author's email.
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Comments.ListWithAuthor(ctx)
	if err != nil {
		h.Log.Error(ctx, "list comments failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load comments"})
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}
