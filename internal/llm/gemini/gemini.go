package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"signal-trading-bot/internal/interfaces"
	"signal-trading-bot/internal/logger"
	"signal-trading-bot/internal/store"
	"signal-trading-bot/internal/trace"
	"signal-trading-bot/internal/types"
)

const responseSchema = `{
  "subject": "[one of the valid subjects, or 'Unknown']",
  "direction": "[Increased/Decreased/Unchanged/Unclear]",
  "rationale": "[brief explanation based only on the post text]"
}`

// GeminiClassifier implements the Classifier interface using the
// Google Gemini generateContent API.
type GeminiClassifier struct {
	cfg      *store.Config
	subjects []string
	endpoint string
	apiKey   string
}

var _ interfaces.Classifier = (*GeminiClassifier)(nil)

// NewGeminiClassifier creates a classifier constrained to the given
// subject whitelist (the mapping table's keys). A missing API key is a
// configuration error surfaced here, before the loop ever starts.
func NewGeminiClassifier(cfg *store.Config, subjects []string) (*GeminiClassifier, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY missing")
	}

	endpoint := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent",
		cfg.LLM.Model,
	)
	// Proxy deployments can override the endpoint wholesale.
	if ep := os.Getenv("GEMINI_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &GeminiClassifier{cfg: cfg, subjects: subjects, endpoint: endpoint, apiKey: apiKey}, nil
}

// Classify sends the post text to Gemini and returns a normalized
// Signal. A nil Signal with nil error means no signal: empty input or
// a response that could not be parsed. Only transport-level failures
// surface as errors.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*types.Signal, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-api-call")
	defer span.End()

	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		// Empty input short-circuits before any API spend.
		logger.Debug(ctx, "Empty post text, skipping classification")
		return nil, nil
	}

	prompt := c.buildPrompt(cleaned)

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": c.cfg.LLM.MaxTokens,
			"temperature":     c.cfg.LLM.Temperature,
		},
	}

	bb, _ := json.Marshal(reqBody)
	req, _ := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(body))
	}

	var r struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		logger.Warn(ctx, "Gemini response body not decodable, treating as no signal", "error", err)
		return nil, nil
	}
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		logger.Warn(ctx, "Gemini response missing candidates, treating as no signal")
		return nil, nil
	}

	sig := c.parseSignal(ctx, r.Candidates[0].Content.Parts[0].Text)
	return sig, nil
}

func (c *GeminiClassifier) buildPrompt(text string) string {
	whitelist := "'" + strings.Join(c.subjects, "', '") + "'"
	return fmt.Sprintf(`Analyze the following post regarding its potential impact on tariff policy. Determine whether the post suggests a change in the likelihood that current tariffs will remain in place.

Post Text: %q

Valid Subjects: [%s]

Instructions:
1. Identify the primary subject mentioned or strongly implied in the post. Your answer MUST be one of the Valid Subjects listed above, or 'Unknown' if none clearly applies. Pick the most specific subject you can.
2. Assess whether the post suggests an Increased, Decreased, or Unchanged likelihood that tariffs relevant to that subject will remain in place. If the post is irrelevant or gives no clear signal, use Unclear.
3. Provide a brief rationale based only on the post text.

Output your analysis ONLY in the following JSON format. Do not include any text before or after the JSON block:
%s`, text, whitelist, responseSchema)
}

// parseSignal unmarshals the model output, stripping markdown fences
// and retrying once if the direct parse fails. Unparsable output is a
// soft failure resolved to no signal.
func (c *GeminiClassifier) parseSignal(ctx context.Context, raw string) *types.Signal {
	var payload struct {
		Subject   string `json:"subject"`
		Direction string `json:"direction"`
		Rationale string `json:"rationale"`
	}

	t := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(t), &payload); err != nil {
		stripped := stripFences(t)
		if stripped == "" {
			logger.Warn(ctx, "Classifier output empty after stripping fences")
			return nil
		}
		if err := json.Unmarshal([]byte(stripped), &payload); err != nil {
			logger.Warn(ctx, "Classifier output not parseable as JSON", "error", err, "raw", truncate(t, 120))
			return nil
		}
	}

	sig := &types.Signal{
		Subject:   payload.Subject,
		Direction: types.NormalizeDirection(payload.Direction),
		Rationale: payload.Rationale,
	}

	// Never trust a subject outside the whitelist.
	if !c.validSubject(sig.Subject) {
		logger.Warn(ctx, "Classifier returned unlisted subject, normalizing", "subject", sig.Subject)
		sig.Subject = "Unknown"
	}

	return sig
}

func (c *GeminiClassifier) validSubject(subject string) bool {
	if subject == "Unknown" {
		return true
	}
	for _, s := range c.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

// stripFences removes a surrounding markdown code fence, with or
// without a json language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimPrefix(s, "```json")
	case strings.HasPrefix(s, "```"):
		s = strings.TrimPrefix(s, "```")
	default:
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
