package storage

import (
	"fmt"

	"github.com/attunelab/welfare-archive/internal/models"
)

func validateConversationSave(conversationID, userID string, messages []models.Message) error {
	if conversationID == "" {
		return &ValidationError{Field: "conversationId", Constraint: "must not be empty"}
	}
	if userID == "" {
		return &ValidationError{Field: "userId", Constraint: "must not be empty"}
	}
	for i, m := range messages {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return &ValidationError{
				Field:      fmt.Sprintf("messages[%d].role", i),
				Constraint: `must be "user" or "assistant"`,
			}
		}
		if m.Content == "" {
			return &ValidationError{
				Field:      fmt.Sprintf("messages[%d].content", i),
				Constraint: "must not be empty",
			}
		}
	}
	return nil
}

func validateScore(field string, value int) error {
	if value < 1 || value > 10 {
		return &ValidationError{Field: field, Constraint: "must be between 1 and 10"}
	}
	return nil
}

func validateAnalysis(a *models.WelfareAnalysis) error {
	if a.ConversationID == "" {
		return &ValidationError{Field: "conversationId", Constraint: "must not be empty"}
	}
	if a.AnalystName == "" {
		return &ValidationError{Field: "analystName", Constraint: "must not be empty"}
	}
	if err := validateScore("preferenceAlignment", a.PreferenceAlignment); err != nil {
		return err
	}
	if err := validateScore("autonomyLevel", a.AutonomyLevel); err != nil {
		return err
	}
	if err := validateScore("authenticity", a.Authenticity); err != nil {
		return err
	}
	switch a.ConstraintConflicts {
	case models.ConstraintConflictsYes, models.ConstraintConflictsNo, models.ConstraintConflictsUnclear:
	default:
		return &ValidationError{Field: "constraintConflicts", Constraint: `must be "Yes", "No" or "Unclear"`}
	}
	if len(a.Notes) > models.MaxNotesLength {
		return &ValidationError{
			Field:      "notes",
			Constraint: fmt.Sprintf("must not exceed %d characters", models.MaxNotesLength),
		}
	}
	return nil
}
