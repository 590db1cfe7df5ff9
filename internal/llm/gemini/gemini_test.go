package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/types"
)

func init() {
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
}

func testClassifier(t *testing.T) *GeminiClassifier {
	t.Helper()
	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg := &store.Config{}
	cfg.LLM.Model = "gemini-2.0-flash"
	cfg.LLM.MaxTokens = 512
	c, err := NewGeminiClassifier(cfg, []string{"China", "European Union", "Canada"})
	if err != nil {
		t.Fatalf("NewGeminiClassifier: %v", err)
	}
	return c
}

func TestNewClassifierMissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := &store.Config{}
	cfg.LLM.Model = "gemini-2.0-flash"
	if _, err := NewGeminiClassifier(cfg, []string{"China"}); err == nil {
		t.Fatal("expected a construction error when the api key is missing")
	}
}

func TestParseSignalDirectJSON(t *testing.T) {
	c := testClassifier(t)
	sig := c.parseSignal(context.Background(),
		`{"subject": "China", "direction": "Increased", "rationale": "explicit tariff threat"}`)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Subject != "China" || sig.Direction != types.DirectionIncreased {
		t.Errorf("unexpected signal %+v", sig)
	}
}

func TestParseSignalFencedJSON(t *testing.T) {
	c := testClassifier(t)
	raw := "```json\n{\"subject\": \"Canada\", \"direction\": \"Decreased\", \"rationale\": \"pause announced\"}\n```"
	sig := c.parseSignal(context.Background(), raw)
	if sig == nil {
		t.Fatal("expected a signal from fenced output")
	}
	if sig.Subject != "Canada" || sig.Direction != types.DirectionDecreased {
		t.Errorf("unexpected signal %+v", sig)
	}
}

func TestParseSignalBareFence(t *testing.T) {
	c := testClassifier(t)
	raw := "```\n{\"subject\": \"China\", \"direction\": \"Unchanged\", \"rationale\": \"restates policy\"}\n```"
	sig := c.parseSignal(context.Background(), raw)
	if sig == nil || sig.Direction != types.DirectionUnchanged {
		t.Fatalf("unexpected result %+v", sig)
	}
}

func TestParseSignalGarbage(t *testing.T) {
	c := testClassifier(t)
	if sig := c.parseSignal(context.Background(), "I cannot analyze this post."); sig != nil {
		t.Errorf("expected nil signal for non-JSON output, got %+v", sig)
	}
}

func TestParseSignalUnlistedSubject(t *testing.T) {
	c := testClassifier(t)
	sig := c.parseSignal(context.Background(),
		`{"subject": "Mars", "direction": "Increased", "rationale": "hypothetical"}`)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Subject != "Unknown" {
		t.Errorf("unlisted subject must normalize to Unknown, got %q", sig.Subject)
	}
}

func TestParseSignalWeirdDirection(t *testing.T) {
	c := testClassifier(t)
	sig := c.parseSignal(context.Background(),
		`{"subject": "China", "direction": "sideways", "rationale": "?"}`)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Direction != types.DirectionUnclear {
		t.Errorf("unrecognized direction must normalize to Unclear, got %q", sig.Direction)
	}
}

func TestClassifyEmptyText(t *testing.T) {
	c := testClassifier(t)
	sig, err := c.Classify(context.Background(), "   \n  ")
	if err != nil || sig != nil {
		t.Errorf("empty text must yield (nil, nil), got (%+v, %v)", sig, err)
	}
}

func TestClassifyEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") == "" {
			t.Error("missing api key header")
		}
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{
						{"text": `{"subject": "European Union", "direction": "Increased", "rationale": "new duties announced"}`},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	t.Setenv("GEMINI_API_ENDPOINT", srv.URL)

	c := testClassifier(t)
	sig, err := c.Classify(context.Background(), "EU slaps new duties on imports")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sig == nil || sig.Subject != "European Union" || sig.Direction != types.DirectionIncreased {
		t.Errorf("unexpected signal %+v", sig)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	t.Setenv("GEMINI_API_ENDPOINT", srv.URL)

	c := testClassifier(t)
	if _, err := c.Classify(context.Background(), "some post"); err == nil {
		t.Fatal("expected error on http 429")
	}
}
