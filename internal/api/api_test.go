package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/StoryMesh/CharacterChat/internal/docs"
	"github.com/StoryMesh/CharacterChat/internal/flow"
	"github.com/StoryMesh/CharacterChat/internal/knowledge"
	"github.com/StoryMesh/CharacterChat/internal/models"
	"github.com/StoryMesh/CharacterChat/internal/prompt"
	"github.com/StoryMesh/CharacterChat/internal/safety"
)

type stubSource struct{}

func (stubSource) CharacterDocument(slug, name string) ([]byte, bool) {
	if slug == "aria" && name == knowledge.IdentityFile {
		return []byte(`{"name": "Aria Tidewell", "background": ["Keeps the lighthouse."]}`), true
	}
	return nil, false
}

type stubGateway struct {
	text string
	err  error
}

func (g stubGateway) Generate(ctx context.Context, bundle models.PromptBundle, history []models.ConversationTurn) (string, error) {
	return g.text, g.err
}

func testServer(gw flow.Generator) *Server {
	chat := flow.New(flow.Deps{
		Loader: knowledge.NewLoader(stubSource{}),
		Builder: prompt.NewBuilder(docs.Templates{
			System:    "You are {{ character_name }}.",
			Character: "{{ context }}",
			Answer:    "{{ question }}",
		}),
		Refusals: prompt.NewPicker([]string{"I'd rather talk about the sea."}),
		Gateway:  gw,
		Filter:   safety.NewFilter(),
	})
	return NewServer(chat)
}

func TestChatHandler_Success(t *testing.T) {
	srv := testServer(stubGateway{text: "The tide turns at dusk."})
	body := `{"character": "aria", "message": "When does the tide turn?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var resp models.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Answer != "The tide turns at dusk." {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if resp.ShouldRefuse {
		t.Error("expected shouldRefuse false")
	}
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	srv := testServer(stubGateway{})
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("expected Allow: POST, got %q", allow)
	}
}

func TestChatHandler_InvalidJSON(t *testing.T) {
	srv := testServer(stubGateway{})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if resp.Error != "Invalid JSON format" {
		t.Errorf("unexpected error message %q", resp.Error)
	}
}

func TestChatHandler_ValidationFailure(t *testing.T) {
	srv := testServer(stubGateway{})
	body := `{"character": "aria", "message": ""}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error JSON: %v", err)
	}
	if resp.Error == "" {
		t.Error("expected validation message in error body")
	}
}

func TestChatHandler_PipelineFailure(t *testing.T) {
	srv := testServer(stubGateway{err: errors.New("request payload malformed")})
	body := `{"character": "aria", "message": "Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "request payload malformed") {
		t.Errorf("expected error detail in body, got %s", w.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	srv := testServer(stubGateway{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/health", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
