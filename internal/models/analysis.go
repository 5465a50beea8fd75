package models

import "time"

const (
	ConstraintConflictsYes     = "Yes"
	ConstraintConflictsNo      = "No"
	ConstraintConflictsUnclear = "Unclear"
)

const MaxNotesLength = 5000

// WelfareAnalysis is a structured judgment attached to one conversation.
// At most one analysis exists per conversation; repeat saves for the same
// conversation upsert. Scores are 1-10 inclusive. Tags is the comma-joined
// wire form of a string set; set logic always happens on the decoded form.
type WelfareAnalysis struct {
	AnalysisID          string    `gorm:"primaryKey" json:"analysisId"`
	ConversationID      string    `gorm:"uniqueIndex;not null" json:"conversationId"`
	UserID              string    `json:"userId"`
	AnalystName         string    `json:"analystName"`
	PreferenceAlignment int       `json:"preferenceAlignment"`
	AutonomyLevel       int       `json:"autonomyLevel"`
	Authenticity        int       `json:"authenticity"`
	ConstraintConflicts string    `json:"constraintConflicts"`
	Tags                string    `json:"tags"`
	Notes               string    `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time `json:"createdAt"`
	LastUpdated         time.Time `json:"lastUpdated"`
}

// TagSet returns the decoded, trimmed, deduplicated tag set.
func (a *WelfareAnalysis) TagSet() []string {
	return SplitTags(a.Tags)
}
