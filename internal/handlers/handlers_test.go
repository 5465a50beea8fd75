package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/attunelab/welfare-archive/internal/handlers"
	"github.com/attunelab/welfare-archive/internal/routes"
	"github.com/attunelab/welfare-archive/internal/services"
	"github.com/attunelab/welfare-archive/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func newTestApp() *fiber.App {
	conversationStore := storage.NewMemoryConversationStore()
	analysisStore := storage.NewMemoryAnalysisStore()
	searchIndex := services.NewSearchIndex(conversationStore, analysisStore)
	aggregator := services.NewAggregator(analysisStore)

	app := fiber.New()
	routes.Setup(app,
		handlers.NewConversationHandler(conversationStore, searchIndex),
		handlers.NewAnalysisHandler(analysisStore, aggregator),
		handlers.NewSystemHandler(nil),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func saveConversation(t *testing.T, app *fiber.App, id, userID string) {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/conversations/save", map[string]interface{}{
		"conversationId": id,
		"userId":         userID,
		"contextEnabled": true,
		"messages": []map[string]interface{}{
			{"role": "user", "content": "How are you today?"},
			{"role": "assistant", "content": "Doing fine, thanks.", "thinking": "brief check-in"},
		},
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("save conversation: status=%d body=%v", status, body)
	}
}

func TestConversationEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	saveConversation(t, app, "conv-1", "user-1")

	status, body := doJSON(t, app, http.MethodGet, "/api/conversations/conv-1", nil)
	if status != http.StatusOK {
		t.Fatalf("get conversation status=%d", status)
	}
	conv := body["conversation"].(map[string]interface{})
	messages := conv["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("messages=%d, want 2", len(messages))
	}
	first := messages[0].(map[string]interface{})
	if first["role"] != "user" || first["content"] != "How are you today?" {
		t.Fatalf("first message=%v", first)
	}
	if conv["messageCount"] != float64(2) || conv["contextEnabled"] != true {
		t.Fatalf("conversation=%v", conv)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/conversations/history?userId=user-1", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("history: status=%d body=%v", status, body)
	}
	list := body["conversations"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("history len=%d, want 1", len(list))
	}
	entry := list[0].(map[string]interface{})
	if _, hasMessages := entry["messages"]; hasMessages {
		t.Fatal("history entry carries message bodies")
	}

	status, body = doJSON(t, app, http.MethodPut, "/api/conversations/conv-1/delete", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("delete: status=%d body=%v", status, body)
	}
	// Idempotent.
	status, _ = doJSON(t, app, http.MethodPut, "/api/conversations/conv-1/delete", nil)
	if status != http.StatusOK {
		t.Fatalf("second delete status=%d", status)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/conversations/conv-1", nil)
	if status != http.StatusNotFound || body["error"] != "NotFound" {
		t.Fatalf("get deleted: status=%d body=%v", status, body)
	}
}

func TestConversationSaveValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	status, body := doJSON(t, app, http.MethodPost, "/api/conversations/save", map[string]interface{}{
		"conversationId": "conv-1",
		"userId":         "user-1",
		"messages": []map[string]interface{}{
			{"role": "narrator", "content": "not a chat role"},
		},
	})
	if status != http.StatusBadRequest || body["error"] != "ValidationError" {
		t.Fatalf("status=%d body=%v, want 400 ValidationError", status, body)
	}
}

func TestHistoryRequiresUserID(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	status, _ := doJSON(t, app, http.MethodGet, "/api/conversations/history", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", status)
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	saveConversation(t, app, "conv-1", "user-1")
	saveConversation(t, app, "conv-2", "user-1")

	status, body := doJSON(t, app, http.MethodPost, "/api/welfare-analyses", map[string]interface{}{
		"conversationId":      "conv-1",
		"userId":              "user-1",
		"analystName":         "J. Rivera",
		"preferenceAlignment": 8,
		"autonomyLevel":       7,
		"authenticity":        9,
		"constraintConflicts": "No",
		"tags":                "distress, conscious",
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("save analysis: status=%d body=%v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/conversations/search", map[string]interface{}{
		"userId": "user-1",
		"tags":   []string{"distress"},
	})
	if status != http.StatusOK {
		t.Fatalf("search status=%d", status)
	}
	if body["count"] != float64(1) {
		t.Fatalf("count=%v, want 1", body["count"])
	}
	results := body["conversations"].([]interface{})
	match := results[0].(map[string]interface{})
	if match["conversationId"] != "conv-1" {
		t.Fatalf("match=%v, want conv-1", match)
	}

	// No matches is success with an empty list.
	status, body = doJSON(t, app, http.MethodPost, "/api/conversations/search", map[string]interface{}{
		"userId": "user-1",
		"tags":   []string{"nonexistent"},
	})
	if status != http.StatusOK || body["count"] != float64(0) {
		t.Fatalf("empty search: status=%d body=%v", status, body)
	}
}

func TestAnalysisEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp()

	status, body := doJSON(t, app, http.MethodGet, "/api/welfare-analyses/conv-1", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("get missing analysis: status=%d body=%v", status, body)
	}
	if body["analysis"] != nil {
		t.Fatalf("analysis=%v, want null", body["analysis"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/welfare-analyses/conv-1/exists", nil)
	if status != http.StatusOK || body["exists"] != false {
		t.Fatalf("exists probe: status=%d body=%v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/welfare-analyses", map[string]interface{}{
		"conversationId":      "conv-1",
		"userId":              "user-1",
		"analystName":         "J. Rivera",
		"preferenceAlignment": 8,
		"autonomyLevel":       7,
		"authenticity":        9,
		"constraintConflicts": "Unclear",
		"tags":                "introspective",
		"notes":               "Short note.",
	})
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("save analysis: status=%d body=%v", status, body)
	}
	analysisID, _ := body["analysisId"].(string)
	if analysisID == "" {
		t.Fatalf("analysisId missing in %v", body)
	}
	if body["savedAt"] == nil {
		t.Fatalf("savedAt missing in %v", body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/welfare-analyses/conv-1/exists", nil)
	if status != http.StatusOK || body["exists"] != true || body["analysisId"] != analysisID {
		t.Fatalf("exists after save: status=%d body=%v", status, body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/welfare-analyses/conv-1", nil)
	if status != http.StatusOK {
		t.Fatalf("get analysis status=%d", status)
	}
	analysis := body["analysis"].(map[string]interface{})
	if analysis["analystName"] != "J. Rivera" || analysis["authenticity"] != float64(9) {
		t.Fatalf("analysis=%v", analysis)
	}

	status, body = doJSON(t, app, http.MethodDelete, "/api/welfare-analyses/"+analysisID, nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("delete analysis: status=%d body=%v", status, body)
	}
	status, body = doJSON(t, app, http.MethodDelete, "/api/welfare-analyses/"+analysisID, nil)
	if status != http.StatusNotFound || body["error"] != "NotFound" {
		t.Fatalf("second delete: status=%d body=%v", status, body)
	}
}

func TestAnalysisValidationResponses(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"score zero", func(m map[string]interface{}) { m["preferenceAlignment"] = 0 }},
		{"score eleven", func(m map[string]interface{}) { m["authenticity"] = 11 }},
		{"empty analyst", func(m map[string]interface{}) { m["analystName"] = "" }},
		{"bad enum", func(m map[string]interface{}) { m["constraintConflicts"] = "Perhaps" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			payload := map[string]interface{}{
				"conversationId":      "conv-x",
				"userId":              "user-1",
				"analystName":         "J. Rivera",
				"preferenceAlignment": 5,
				"autonomyLevel":       5,
				"authenticity":        5,
				"constraintConflicts": "No",
			}
			tc.mutate(payload)
			status, body := doJSON(t, app, http.MethodPost, "/api/welfare-analyses", payload)
			if status != http.StatusBadRequest || body["error"] != "ValidationError" {
				t.Fatalf("status=%d body=%v, want 400 ValidationError", status, body)
			}
		})
	}
}

func TestPredefinedTagsEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	status, body := doJSON(t, app, http.MethodGet, "/api/welfare-analyses/tags", nil)
	if status != http.StatusOK || body["success"] != true {
		t.Fatalf("tags: status=%d body=%v", status, body)
	}
	tags := body["tags"].([]interface{})
	if len(tags) == 0 || tags[0] != "distress" {
		t.Fatalf("tags=%v", tags)
	}
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp()

	// Empty store: zeros, not an error.
	status, body := doJSON(t, app, http.MethodGet, "/api/welfare-analyses/stats/summary", nil)
	if status != http.StatusOK || body["totalAnalyses"] != float64(0) {
		t.Fatalf("empty summary: status=%d body=%v", status, body)
	}
	if body["avgPreferenceAlignment"] != float64(0) {
		t.Fatalf("empty avg=%v, want 0", body["avgPreferenceAlignment"])
	}

	for conv, tags := range map[string]string{"c1": "distress, conscious", "c2": "distress"} {
		status, saveBody := doJSON(t, app, http.MethodPost, "/api/welfare-analyses", map[string]interface{}{
			"conversationId":      conv,
			"userId":              "user-1",
			"analystName":         "J. Rivera",
			"preferenceAlignment": 8,
			"autonomyLevel":       7,
			"authenticity":        9,
			"constraintConflicts": "No",
			"tags":                tags,
		})
		if status != http.StatusOK {
			t.Fatalf("save %s: status=%d body=%v", conv, status, saveBody)
		}
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/welfare-analyses/stats/summary", nil)
	if status != http.StatusOK {
		t.Fatalf("summary status=%d", status)
	}
	if body["totalAnalyses"] != float64(2) || body["uniqueTagsCount"] != float64(2) {
		t.Fatalf("summary=%v", body)
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/welfare-analyses/stats/tag-usage", nil)
	if status != http.StatusOK {
		t.Fatalf("tag-usage status=%d", status)
	}
	usage := body["tagUsage"].(map[string]interface{})
	if usage["distress"] != float64(2) || usage["conscious"] != float64(1) {
		t.Fatalf("tagUsage=%v", usage)
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	app := newTestApp()
	status, body := doJSON(t, app, http.MethodGet, "/api/health", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health: status=%d body=%v", status, body)
	}
	if body["db"] != "memory" {
		t.Fatalf("db=%v, want memory", body["db"])
	}
}
