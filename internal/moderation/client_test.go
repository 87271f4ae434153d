package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
}

func testClient(endpoint string) *Client {
	return NewClient(Config{Endpoint: endpoint, Model: "test-model", APIKey: "test-key"})
}

func TestModerateContentStripsCodeFence(t *testing.T) {
	server := completionServer(t, "```json\n{\"isApproved\": true, \"confidence\": 92, \"issues\": [], \"reason\": \"clean\", \"category\": \"SAFE\"}\n```")
	defer server.Close()

	verdict, err := testClient(server.URL).ModerateContent(context.Background(), "Great onsite rounds at Initech")
	if err != nil {
		t.Fatalf("ModerateContent returned error: %v", err)
	}
	if !verdict.Success || !verdict.IsApproved {
		t.Fatalf("expected a successful approved verdict, got %+v", verdict)
	}
	if verdict.Confidence != 92 || verdict.Category != CategorySafe {
		t.Fatalf("unexpected verdict %+v", verdict)
	}
	if len(verdict.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", verdict.Issues)
	}
}

func TestModerateContentMalformedResponseFailsClosed(t *testing.T) {
	server := completionServer(t, "I cannot respond with JSON today.")
	defer server.Close()

	verdict, err := testClient(server.URL).ModerateContent(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for a non-JSON response")
	}
	assertFailClosed(t, verdict)
}

func TestModerateContentUnknownCategoryFailsClosed(t *testing.T) {
	server := completionServer(t, `{"isApproved": true, "confidence": 99, "issues": [], "category": "TOTALLY_FINE"}`)
	defer server.Close()

	verdict, err := testClient(server.URL).ModerateContent(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for an unknown category")
	}
	assertFailClosed(t, verdict)
}

func TestModerateContentEndpointErrorFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	verdict, err := testClient(server.URL).ModerateContent(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error for a 4xx response")
	}
	assertFailClosed(t, verdict)
}

func TestModerateContentUnconfiguredFailsClosed(t *testing.T) {
	client := NewClient(Config{})
	if client.Configured() {
		t.Fatal("client without a key must not report configured")
	}
	verdict, err := client.ModerateContent(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error from an unconfigured client")
	}
	assertFailClosed(t, verdict)
}

func assertFailClosed(t *testing.T, verdict Verdict) {
	t.Helper()
	if verdict.Success || verdict.IsApproved {
		t.Fatalf("expected a fail-closed verdict, got %+v", verdict)
	}
	if verdict.Confidence != 0 || verdict.Category != CategoryError {
		t.Fatalf("expected confidence 0 and ERROR category, got %+v", verdict)
	}
}

func TestExtractUpdateInfo(t *testing.T) {
	server := completionServer(t, `{"companyName": "Initech", "title": "Initech drive", "content": "Initech visits campus on Friday."}`)
	defer server.Close()

	draft, err := testClient(server.URL).ExtractUpdateInfo(context.Background(), "initech friday campus drive")
	if err != nil {
		t.Fatalf("ExtractUpdateInfo returned error: %v", err)
	}
	if !draft.Success || draft.CompanyName != "Initech" || draft.Title != "Initech drive" {
		t.Fatalf("unexpected draft %+v", draft)
	}
}

func TestExtractUpdateInfoFallsBackToOriginalText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	original := "initech friday campus drive"
	draft, err := testClient(server.URL).ExtractUpdateInfo(context.Background(), original)
	if err == nil {
		t.Fatal("expected an error for a 4xx response")
	}
	if draft.Success {
		t.Fatal("fallback draft must not report success")
	}
	if draft.Content != original || draft.Title != "" || draft.CompanyName != "" {
		t.Fatalf("fallback draft must echo the original text, got %+v", draft)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```JSON\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripCodeFence(tc.in); got != tc.want {
			t.Fatalf("stripCodeFence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
