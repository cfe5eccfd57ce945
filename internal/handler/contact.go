package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/altera-oes/backend/internal/logging"
	"github.com/altera-oes/backend/internal/model"
	"github.com/altera-oes/backend/internal/queue"
)

// ContactStore persists contact messages.
type ContactStore interface {
	Create(ctx context.Context, c *model.Contact) error
}

// ContactPublisher announces stored contact messages.
type ContactPublisher interface {
	PublishContactReceived(ctx context.Context, ev queue.ContactReceivedEvent) error
}

// ContactHandler serves the public contact form.
type ContactHandler struct {
	Contacts ContactStore
	Events   ContactPublisher
	Log      logging.Logger
}

type contactReq struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Message string `json:"message" validate:"required"`
}

// Create stores a contact message. No authentication is required.
func (h *ContactHandler) Create(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	contact := model.Contact{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.Contacts.Create(ctx, &contact); err != nil {
		h.Log.Error(ctx, "save contact failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save contact message"})
	}

	if err := h.Events.PublishContactReceived(ctx, queue.ContactReceivedEvent{
		ContactID:  contact.ID,
		Name:       contact.Name,
		Email:      contact.Email,
		Message:    contact.Message,
		ReceivedAt: contact.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		h.Log.Warn(ctx, "publish contact event failed", "contact_id", contact.ID, "err", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"contact": contact})
}
