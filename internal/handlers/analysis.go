package handlers

import (
	"github.com/attunelab/welfare-archive/internal/models"
	"github.com/attunelab/welfare-archive/internal/services"
	"github.com/attunelab/welfare-archive/internal/storage"
	"github.com/gofiber/fiber/v2"
)

type AnalysisHandler struct {
	store      storage.AnalysisStore
	aggregator *services.Aggregator
}

func NewAnalysisHandler(store storage.AnalysisStore, aggregator *services.Aggregator) *AnalysisHandler {
	return &AnalysisHandler{store: store, aggregator: aggregator}
}

// SaveAnalysis upserts the welfare analysis for a conversation. Repeat saves
// for the same conversationId overwrite the prior record.
func (h *AnalysisHandler) SaveAnalysis(c *fiber.Ctx) error {
	var req struct {
		AnalysisID          string `json:"analysisId"`
		ConversationID      string `json:"conversationId"`
		UserID              string `json:"userId"`
		AnalystName         string `json:"analystName"`
		PreferenceAlignment int    `json:"preferenceAlignment"`
		AutonomyLevel       int    `json:"autonomyLevel"`
		Authenticity        int    `json:"authenticity"`
		ConstraintConflicts string `json:"constraintConflicts"`
		Tags                string `json:"tags"`
		Notes               string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return failBadRequest(c, "invalid request body")
	}

	stored, err := h.store.Save(c.Context(), &models.WelfareAnalysis{
		AnalysisID:          req.AnalysisID,
		ConversationID:      req.ConversationID,
		UserID:              req.UserID,
		AnalystName:         req.AnalystName,
		PreferenceAlignment: req.PreferenceAlignment,
		AutonomyLevel:       req.AutonomyLevel,
		Authenticity:        req.Authenticity,
		ConstraintConflicts: req.ConstraintConflicts,
		Tags:                req.Tags,
		Notes:               req.Notes,
	})
	if err != nil {
		return failStorage(c, err)
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"analysisId": stored.AnalysisID,
		"savedAt":    stored.LastUpdated,
		"message":    "Analysis saved",
	})
}

// GetAnalysis returns the analysis for a conversation; a missing record is a
// successful response carrying null.
func (h *AnalysisHandler) GetAnalysis(c *fiber.Ctx) error {
	analysis, err := h.store.Get(c.Context(), c.Params("conversationId"))
	if err != nil {
		return failStorage(c, err)
	}
	if analysis == nil {
		return c.JSON(fiber.Map{"success": true, "analysis": nil})
	}
	return c.JSON(fiber.Map{"success": true, "analysis": analysis})
}

func (h *AnalysisHandler) AnalysisExists(c *fiber.Ctx) error {
	exists, analysisID, err := h.store.Exists(c.Context(), c.Params("conversationId"))
	if err != nil {
		return failStorage(c, err)
	}

	resp := fiber.Map{"success": true, "exists": exists}
	if exists {
		resp["analysisId"] = analysisID
	}
	return c.JSON(resp)
}

func (h *AnalysisHandler) DeleteAnalysis(c *fiber.Ctx) error {
	if err := h.store.Delete(c.Context(), c.Params("analysisId")); err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Analysis deleted",
	})
}

// ListPredefinedTags returns the suggested vocabulary. It does not constrain
// what SaveAnalysis accepts.
func (h *AnalysisHandler) ListPredefinedTags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"tags":    models.PredefinedTags,
	})
}

func (h *AnalysisHandler) SummaryStats(c *fiber.Ctx) error {
	stats, err := h.aggregator.SummaryStats(c.Context())
	if err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{
		"success":                true,
		"totalAnalyses":          stats.TotalAnalyses,
		"avgPreferenceAlignment": stats.AvgPreferenceAlignment,
		"avgAutonomyLevel":       stats.AvgAutonomyLevel,
		"avgAuthenticity":        stats.AvgAuthenticity,
		"uniqueTagsCount":        stats.UniqueTagsCount,
	})
}

func (h *AnalysisHandler) TagUsage(c *fiber.Ctx) error {
	usage, err := h.aggregator.TagUsage(c.Context())
	if err != nil {
		return failStorage(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"tagUsage": usage,
	})
}
