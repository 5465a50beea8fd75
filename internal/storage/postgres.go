package storage

import (
	"context"
	"errors"
	"time"

	"github.com/attunelab/welfare-archive/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostgresConversationStore persists conversations through GORM. All writes
// are single-row and rely on Postgres row-level atomicity; concurrent saves
// to the same key resolve last-write-wins.
type PostgresConversationStore struct {
	db *gorm.DB
}

func NewPostgresConversationStore(db *gorm.DB) *PostgresConversationStore {
	return &PostgresConversationStore{db: db}
}

func (s *PostgresConversationStore) Save(ctx context.Context, conversationID, userID string, messages []models.Message, contextEnabled bool) error {
	if err := validateConversationSave(conversationID, userID, messages); err != nil {
		return err
	}
	blob, err := models.EncodeMessages(messages)
	if err != nil {
		return unavailable(err)
	}

	db := s.db.WithContext(ctx)
	now := time.Now().UTC()

	var conv models.Conversation
	err = db.First(&conv, "conversation_id = ?", conversationID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		conv = models.Conversation{
			ConversationID: conversationID,
			UserID:         userID,
			Messages:       blob,
			MessageCount:   len(messages),
			ContextEnabled: contextEnabled,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := db.Create(&conv).Error; err != nil {
			return unavailable(err)
		}
		return nil
	case err != nil:
		return unavailable(err)
	}

	updates := map[string]interface{}{
		"user_id":         userID,
		"messages":        blob,
		"message_count":   len(messages),
		"context_enabled": contextEnabled,
		"updated_at":      now,
	}
	if err := db.Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(updates).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *PostgresConversationStore) History(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	var convs []models.Conversation
	if err := s.db.WithContext(ctx).
		Select("conversation_id", "created_at", "message_count", "context_enabled").
		Where("user_id = ? AND deleted = ?", userID, false).
		Order("created_at DESC").
		Find(&convs).Error; err != nil {
		return nil, unavailable(err)
	}

	summaries := make([]models.ConversationSummary, len(convs))
	for i := range convs {
		summaries[i] = convs[i].Summary()
	}
	return summaries, nil
}

func (s *PostgresConversationStore) Get(ctx context.Context, conversationID string) (*models.Conversation, []models.Message, error) {
	var conv models.Conversation
	err := s.db.WithContext(ctx).First(&conv, "conversation_id = ?", conversationID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil, ErrNotFound
	case err != nil:
		return nil, nil, unavailable(err)
	}
	if conv.Deleted {
		return nil, nil, ErrNotFound
	}

	messages, err := conv.DecodedMessages()
	if err != nil {
		return nil, nil, unavailable(err)
	}
	return &conv, messages, nil
}

func (s *PostgresConversationStore) SoftDelete(ctx context.Context, conversationID string) error {
	// A zero-row update is still success; the operation is idempotent and
	// unknown ids are not an error.
	if err := s.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Updates(map[string]interface{}{
			"deleted":    true,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return unavailable(err)
	}
	return nil
}

// PostgresAnalysisStore persists welfare analyses through GORM, upserting by
// conversation_id.
type PostgresAnalysisStore struct {
	db *gorm.DB
}

func NewPostgresAnalysisStore(db *gorm.DB) *PostgresAnalysisStore {
	return &PostgresAnalysisStore{db: db}
}

func (s *PostgresAnalysisStore) Save(ctx context.Context, analysis *models.WelfareAnalysis) (*models.WelfareAnalysis, error) {
	if err := validateAnalysis(analysis); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	now := time.Now().UTC()

	record := *analysis
	record.Tags = models.JoinTags(models.SplitTags(analysis.Tags))

	var prev models.WelfareAnalysis
	err := db.First(&prev, "conversation_id = ?", analysis.ConversationID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if record.AnalysisID == "" {
			record.AnalysisID = uuid.NewString()
		}
		record.CreatedAt = now
		record.LastUpdated = now
		if err := db.Create(&record).Error; err != nil {
			return nil, unavailable(err)
		}
		return &record, nil
	case err != nil:
		return nil, unavailable(err)
	}

	record.AnalysisID = prev.AnalysisID
	record.CreatedAt = prev.CreatedAt
	if !now.After(prev.LastUpdated) {
		now = prev.LastUpdated.Add(time.Microsecond)
	}
	record.LastUpdated = now

	if err := db.Model(&models.WelfareAnalysis{}).
		Where("conversation_id = ?", record.ConversationID).
		Updates(map[string]interface{}{
			"user_id":              record.UserID,
			"analyst_name":         record.AnalystName,
			"preference_alignment": record.PreferenceAlignment,
			"autonomy_level":       record.AutonomyLevel,
			"authenticity":         record.Authenticity,
			"constraint_conflicts": record.ConstraintConflicts,
			"tags":                 record.Tags,
			"notes":                record.Notes,
			"last_updated":         record.LastUpdated,
		}).Error; err != nil {
		return nil, unavailable(err)
	}
	return &record, nil
}

func (s *PostgresAnalysisStore) Get(ctx context.Context, conversationID string) (*models.WelfareAnalysis, error) {
	var analysis models.WelfareAnalysis
	err := s.db.WithContext(ctx).First(&analysis, "conversation_id = ?", conversationID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, unavailable(err)
	}
	return &analysis, nil
}

func (s *PostgresAnalysisStore) Exists(ctx context.Context, conversationID string) (bool, string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.WelfareAnalysis{}).
		Where("conversation_id = ?", conversationID).
		Limit(1).
		Pluck("analysis_id", &ids).Error; err != nil {
		return false, "", unavailable(err)
	}
	if len(ids) == 0 {
		return false, "", nil
	}
	return true, ids[0], nil
}

func (s *PostgresAnalysisStore) Delete(ctx context.Context, analysisID string) error {
	result := s.db.WithContext(ctx).
		Where("analysis_id = ?", analysisID).
		Delete(&models.WelfareAnalysis{})
	if result.Error != nil {
		return unavailable(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresAnalysisStore) ListAll(ctx context.Context) ([]models.WelfareAnalysis, error) {
	var all []models.WelfareAnalysis
	if err := s.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, unavailable(err)
	}
	return all, nil
}

func (s *PostgresAnalysisStore) ListByConversationIDs(ctx context.Context, conversationIDs []string) ([]models.WelfareAnalysis, error) {
	if len(conversationIDs) == 0 {
		return []models.WelfareAnalysis{}, nil
	}
	var matched []models.WelfareAnalysis
	if err := s.db.WithContext(ctx).
		Where("conversation_id IN ?", conversationIDs).
		Find(&matched).Error; err != nil {
		return nil, unavailable(err)
	}
	return matched, nil
}
