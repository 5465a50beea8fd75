package handlers

import (
	"time"

	"github.com/attunelab/welfare-archive/internal/models"
	"github.com/attunelab/welfare-archive/internal/services"
	"github.com/attunelab/welfare-archive/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type ConversationHandler struct {
	store  storage.ConversationStore
	search *services.SearchIndex
}

func NewConversationHandler(store storage.ConversationStore, search *services.SearchIndex) *ConversationHandler {
	return &ConversationHandler{store: store, search: search}
}

// SaveConversation persists a full chat snapshot. The caller always sends
// the complete message history; prior messages are replaced, never appended.
func (h *ConversationHandler) SaveConversation(c *fiber.Ctx) error {
	var req struct {
		ConversationID string           `json:"conversationId"`
		UserID         string           `json:"userId"`
		Messages       []models.Message `json:"messages"`
		ContextEnabled bool             `json:"contextEnabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return failBadRequest(c, "invalid request body")
	}

	if err := h.store.Save(c.Context(), req.ConversationID, req.UserID, req.Messages, req.ContextEnabled); err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *ConversationHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return failBadRequest(c, "userId query parameter is required")
	}

	summaries, err := h.store.History(c.Context(), userID)
	if err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": summaries,
	})
}

func (h *ConversationHandler) GetConversation(c *fiber.Ctx) error {
	conv, messages, err := h.store.Get(c.Context(), c.Params("id"))
	if err != nil {
		return failStorage(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"conversation": fiber.Map{
			"conversationId": conv.ConversationID,
			"userId":         conv.UserID,
			"messages":       messages,
			"contextEnabled": conv.ContextEnabled,
			"messageCount":   conv.MessageCount,
			"createdAt":      conv.CreatedAt,
			"updatedAt":      conv.UpdatedAt,
		},
	})
}

func (h *ConversationHandler) SoftDeleteConversation(c *fiber.Ctx) error {
	if err := h.store.SoftDelete(c.Context(), c.Params("id")); err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SearchConversations filters by date range, context flag and analysis tags.
// Dates accept RFC 3339 or plain YYYY-MM-DD, inclusive on createdAt.
func (h *ConversationHandler) SearchConversations(c *fiber.Ctx) error {
	var req struct {
		UserID         string   `json:"userId"`
		DateFrom       string   `json:"dateFrom"`
		DateTo         string   `json:"dateTo"`
		Tags           []string `json:"tags"`
		ContextEnabled *bool    `json:"contextEnabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return failBadRequest(c, "invalid request body")
	}
	if req.UserID == "" {
		return failBadRequest(c, "userId is required")
	}

	filters := services.SearchFilters{
		UserID:         req.UserID,
		Tags:           req.Tags,
		ContextEnabled: req.ContextEnabled,
	}
	if req.DateFrom != "" {
		from, err := parseDate(req.DateFrom)
		if err != nil {
			return failBadRequest(c, "dateFrom must be RFC 3339 or YYYY-MM-DD")
		}
		filters.DateFrom = &from
	}
	if req.DateTo != "" {
		to, err := parseDate(req.DateTo)
		if err != nil {
			return failBadRequest(c, "dateTo must be RFC 3339 or YYYY-MM-DD")
		}
		// A bare date upper bound covers the whole day.
		if len(req.DateTo) == len("2006-01-02") {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		filters.DateTo = &to
	}

	summaries, err := h.search.Search(c.Context(), filters)
	if err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{
		"success":       true,
		"conversations": summaries,
		"count":         len(summaries),
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
