package routes

import (
	"github.com/attunelab/welfare-archive/internal/handlers"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	conversationHandler *handlers.ConversationHandler,
	analysisHandler *handlers.AnalysisHandler,
	systemHandler *handlers.SystemHandler,
) {
	app.Get("/api/health", systemHandler.Health)

	api := app.Group("/api")

	// Conversations
	conversations := api.Group("/conversations")
	conversations.Post("/save", conversationHandler.SaveConversation)
	conversations.Get("/history", conversationHandler.GetHistory)
	conversations.Post("/search", conversationHandler.SearchConversations)
	conversations.Get("/:id", conversationHandler.GetConversation)
	conversations.Put("/:id/delete", conversationHandler.SoftDeleteConversation)

	// Welfare analyses. Static segments before the :conversationId wildcard.
	analyses := api.Group("/welfare-analyses")
	analyses.Get("/tags", analysisHandler.ListPredefinedTags)
	analyses.Get("/stats/summary", analysisHandler.SummaryStats)
	analyses.Get("/stats/tag-usage", analysisHandler.TagUsage)
	analyses.Post("/", analysisHandler.SaveAnalysis)
	analyses.Get("/:conversationId/exists", analysisHandler.AnalysisExists)
	analyses.Get("/:conversationId", analysisHandler.GetAnalysis)
	analyses.Delete("/:analysisId", analysisHandler.DeleteAnalysis)
}
