package storage

import (
	"context"

	"github.com/attunelab/welfare-archive/internal/models"
)

// ConversationStore persists full-snapshot conversation records keyed by
// conversationId. Deletion is a soft flag; rows are never removed.
type ConversationStore interface {
	// Save writes a complete snapshot, replacing any prior message list.
	// CreatedAt is set once on first save; UpdatedAt on every save.
	Save(ctx context.Context, conversationID, userID string, messages []models.Message, contextEnabled bool) error

	// History lists a user's non-deleted conversations, newest CreatedAt
	// first. Message bodies are never included.
	History(ctx context.Context, userID string) ([]models.ConversationSummary, error)

	// Get returns the full record with decoded messages. Absent or
	// soft-deleted conversations yield ErrNotFound.
	Get(ctx context.Context, conversationID string) (*models.Conversation, []models.Message, error)

	// SoftDelete flips the deleted flag and touches UpdatedAt. Idempotent;
	// an unknown id also succeeds.
	SoftDelete(ctx context.Context, conversationID string) error
}

// AnalysisStore persists welfare-analysis records, at most one per
// conversation. Saves upsert by conversationId; deletion is permanent.
type AnalysisStore interface {
	// Save validates then upserts by conversationId, returning the stored
	// record. CreatedAt is preserved across upserts; LastUpdated strictly
	// increases. A missing AnalysisID is generated on first insert.
	Save(ctx context.Context, analysis *models.WelfareAnalysis) (*models.WelfareAnalysis, error)

	// Get returns the analysis for a conversation, or (nil, nil) when none
	// exists. A missing record is not an error.
	Get(ctx context.Context, conversationID string) (*models.WelfareAnalysis, error)

	// Exists probes for an analysis without loading the full record.
	Exists(ctx context.Context, conversationID string) (bool, string, error)

	// Delete removes the record with the given analysisId permanently.
	Delete(ctx context.Context, analysisID string) error

	// ListAll returns every stored analysis, for aggregation scans.
	ListAll(ctx context.Context) ([]models.WelfareAnalysis, error)

	// ListByConversationIDs bulk-fetches analyses for the search tag join.
	ListByConversationIDs(ctx context.Context, conversationIDs []string) ([]models.WelfareAnalysis, error)
}
