package services

import (
	"context"
	"time"

	"github.com/attunelab/welfare-archive/internal/models"
	"github.com/attunelab/welfare-archive/internal/storage"
)

// SearchFilters are all optional except UserID. Nil means "not supplied".
type SearchFilters struct {
	UserID         string
	DateFrom       *time.Time
	DateTo         *time.Time
	Tags           []string
	ContextEnabled *bool
}

// SearchIndex filters a user's conversations by date range and context flag,
// and joins against the analysis store for tag filtering. Tags are not a
// conversation-level attribute; a conversation matches a tag filter only
// through its associated analysis.
type SearchIndex struct {
	conversations storage.ConversationStore
	analyses      storage.AnalysisStore
}

func NewSearchIndex(conversations storage.ConversationStore, analyses storage.AnalysisStore) *SearchIndex {
	return &SearchIndex{conversations: conversations, analyses: analyses}
}

// Search returns matching conversation summaries, newest first. Soft-deleted
// conversations are always excluded. With no filters the result equals the
// plain history listing. An empty result is success, never an error.
func (s *SearchIndex) Search(ctx context.Context, filters SearchFilters) ([]models.ConversationSummary, error) {
	summaries, err := s.conversations.History(ctx, filters.UserID)
	if err != nil {
		return nil, err
	}

	matched := []models.ConversationSummary{}
	for _, summary := range summaries {
		if filters.DateFrom != nil && summary.CreatedAt.Before(*filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && summary.CreatedAt.After(*filters.DateTo) {
			continue
		}
		if filters.ContextEnabled != nil && summary.ContextEnabled != *filters.ContextEnabled {
			continue
		}
		matched = append(matched, summary)
	}

	if len(filters.Tags) == 0 {
		return matched, nil
	}
	return s.filterByTags(ctx, matched, filters.Tags)
}

// filterByTags keeps conversations whose analysis tag set intersects the
// requested tags (OR semantics). Conversations without an analysis never
// match.
func (s *SearchIndex) filterByTags(ctx context.Context, summaries []models.ConversationSummary, tags []string) ([]models.ConversationSummary, error) {
	ids := make([]string, len(summaries))
	for i, summary := range summaries {
		ids[i] = summary.ConversationID
	}

	analyses, err := s.analyses.ListByConversationIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	tagged := make(map[string]bool, len(analyses))
	for i := range analyses {
		if models.TagsIntersect(analyses[i].TagSet(), tags) {
			tagged[analyses[i].ConversationID] = true
		}
	}

	matched := []models.ConversationSummary{}
	for _, summary := range summaries {
		if tagged[summary.ConversationID] {
			matched = append(matched, summary)
		}
	}
	return matched, nil
}
