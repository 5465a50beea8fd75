package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/attunelab/welfare-archive/internal/models"
	"github.com/google/uuid"
)

// MemoryConversationStore is a mutex-guarded map implementation used for
// local development and tests. Records are copied on the way in and out so
// callers never share memory with the store.
type MemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]*models.Conversation
}

func NewMemoryConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{
		conversations: make(map[string]*models.Conversation),
	}
}

func (s *MemoryConversationStore) Save(ctx context.Context, conversationID, userID string, messages []models.Message, contextEnabled bool) error {
	if err := validateConversationSave(conversationID, userID, messages); err != nil {
		return err
	}
	blob, err := models.EncodeMessages(messages)
	if err != nil {
		return unavailable(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	conv, exists := s.conversations[conversationID]
	if !exists {
		conv = &models.Conversation{
			ConversationID: conversationID,
			CreatedAt:      now,
		}
		s.conversations[conversationID] = conv
	}
	conv.UserID = userID
	conv.Messages = blob
	conv.MessageCount = len(messages)
	conv.ContextEnabled = contextEnabled
	conv.UpdatedAt = now
	return nil
}

func (s *MemoryConversationStore) History(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := []models.ConversationSummary{}
	for _, conv := range s.conversations {
		if conv.Deleted || conv.UserID != userID {
			continue
		}
		summaries = append(summaries, conv.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

func (s *MemoryConversationStore) Get(ctx context.Context, conversationID string) (*models.Conversation, []models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, exists := s.conversations[conversationID]
	if !exists || conv.Deleted {
		return nil, nil, ErrNotFound
	}
	copied := *conv
	messages, err := copied.DecodedMessages()
	if err != nil {
		return nil, nil, unavailable(err)
	}
	return &copied, messages, nil
}

func (s *MemoryConversationStore) SoftDelete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unknown ids succeed too; soft-delete is idempotent.
	if conv, exists := s.conversations[conversationID]; exists {
		conv.Deleted = true
		conv.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// MemoryAnalysisStore is the in-memory counterpart for welfare analyses,
// keyed by conversationId with a secondary analysisId index.
type MemoryAnalysisStore struct {
	mu           sync.RWMutex
	analyses     map[string]*models.WelfareAnalysis // conversationID -> record
	analysisConv map[string]string                  // analysisID -> conversationID
}

func NewMemoryAnalysisStore() *MemoryAnalysisStore {
	return &MemoryAnalysisStore{
		analyses:     make(map[string]*models.WelfareAnalysis),
		analysisConv: make(map[string]string),
	}
}

func (s *MemoryAnalysisStore) Save(ctx context.Context, analysis *models.WelfareAnalysis) (*models.WelfareAnalysis, error) {
	if err := validateAnalysis(analysis); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	record := *analysis
	record.Tags = models.JoinTags(models.SplitTags(analysis.Tags))

	if prev, exists := s.analyses[analysis.ConversationID]; exists {
		record.AnalysisID = prev.AnalysisID
		record.CreatedAt = prev.CreatedAt
		// Keep LastUpdated strictly increasing even on coarse clocks.
		if !now.After(prev.LastUpdated) {
			now = prev.LastUpdated.Add(time.Nanosecond)
		}
		record.LastUpdated = now
	} else {
		if record.AnalysisID == "" {
			record.AnalysisID = uuid.NewString()
		}
		record.CreatedAt = now
		record.LastUpdated = now
	}

	s.analyses[record.ConversationID] = &record
	s.analysisConv[record.AnalysisID] = record.ConversationID

	stored := record
	return &stored, nil
}

func (s *MemoryAnalysisStore) Get(ctx context.Context, conversationID string) (*models.WelfareAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	analysis, exists := s.analyses[conversationID]
	if !exists {
		return nil, nil
	}
	copied := *analysis
	return &copied, nil
}

func (s *MemoryAnalysisStore) Exists(ctx context.Context, conversationID string) (bool, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if analysis, exists := s.analyses[conversationID]; exists {
		return true, analysis.AnalysisID, nil
	}
	return false, "", nil
}

func (s *MemoryAnalysisStore) Delete(ctx context.Context, analysisID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conversationID, exists := s.analysisConv[analysisID]
	if !exists {
		return ErrNotFound
	}
	delete(s.analyses, conversationID)
	delete(s.analysisConv, analysisID)
	return nil
}

func (s *MemoryAnalysisStore) ListAll(ctx context.Context) ([]models.WelfareAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]models.WelfareAnalysis, 0, len(s.analyses))
	for _, analysis := range s.analyses {
		all = append(all, *analysis)
	}
	return all, nil
}

func (s *MemoryAnalysisStore) ListByConversationIDs(ctx context.Context, conversationIDs []string) ([]models.WelfareAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.WelfareAnalysis{}
	for _, id := range conversationIDs {
		if analysis, exists := s.analyses[id]; exists {
			matched = append(matched, *analysis)
		}
	}
	return matched, nil
}
