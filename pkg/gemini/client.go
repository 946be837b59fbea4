package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"studysync-backend/pkg/retry"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// MaxPromptChars caps how much concatenated material text goes into a
// single prompt. Content beyond the cap is dropped, not summarized.
const MaxPromptChars = 15000

// ErrNotJSON marks a response that survived the HTTP call but could not be
// parsed as JSON, directly or out of a fenced block. The raw text is
// returned alongside so callers can keep it for diagnostics.
var ErrNotJSON = errors.New("gemini: response is not valid JSON")

// Client is an explicit Gemini API client. Construct one at startup and
// pass it by reference; there is no package-level state.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		retryCfg:   retry.DefaultConfig(),
	}
}

// WithBaseURL overrides the API endpoint. Used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimSuffix(url, "/")
	return c
}

// SummaryPayload is the JSON object the model is instructed to return.
type SummaryPayload struct {
	Title          string         `json:"title"`
	Summary        string         `json:"summary"`
	Roadmap        []RoadmapEntry `json:"roadmap"`
	KeyPoints      []string       `json:"keyPoints"`
	ModelQuestions []Question     `json:"modelQuestions"`
	ActionPlan     []Action       `json:"actionPlan"`
}

type RoadmapEntry struct {
	Week        int    `json:"week"`
	Focus       string `json:"focus"`
	Description string `json:"description"`
}

type Question struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"`
}

type Action struct {
	Task     string `json:"task"`
	Priority string `json:"priority"`
}

// Gemini API request/response types

type generateRequest struct {
	Contents         []requestContent  `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content candidateContent `json:"content"`
}

type candidateContent struct {
	Parts []requestPart `json:"parts"`
}

// BuildPrompt assembles the summarization prompt for one course. Material
// text is truncated to MaxPromptChars before inclusion.
func BuildPrompt(courseName, materialText string) string {
	if len(materialText) > MaxPromptChars {
		materialText = materialText[:MaxPromptChars]
	}

	return fmt.Sprintf(`You are an AI tutor for engineering students. Analyze the following course material from Google Classroom
and return a structured JSON object with the following structure:

{
  "title": "Course Name",
  "summary": "Concise yet complete summary of the content",
  "roadmap": [
    {"week": 1, "focus": "Topic 1", "description": "Explain briefly what to do"},
    {"week": 2, "focus": "Topic 2", "description": "Explain briefly what to do"}
  ],
  "keyPoints": ["point 1", "point 2"],
  "modelQuestions": [
    {"question": "Explain X", "type": "short/long/mcq"}
  ],
  "actionPlan": [
    {"task": "Read Section 1", "priority": "high"},
    {"task": "Revise key formulas", "priority": "medium"}
  ]
}

The course is named %q. Use the content below as reference:
"""%s"""`, courseName, materialText)
}

// GenerateCourseSummary issues one generation request for a course and
// parses the structured payload out of the response. On a parse failure
// the raw response text is returned together with ErrNotJSON.
func (c *Client) GenerateCourseSummary(ctx context.Context, courseName, materialText string) (*SummaryPayload, string, error) {
	prompt := BuildPrompt(courseName, materialText)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	payload, err := ParseSummaryPayload(raw)
	if err != nil {
		return nil, raw, err
	}
	return payload, raw, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []requestContent{
			{Parts: []requestPart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var text string
	err = retry.WithBackoff(ctx, c.retryCfg, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("gemini: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("gemini: request failed: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("gemini: failed to read response: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gemini: API error: status %d: %s", resp.StatusCode, string(respBody))
		}

		var apiResp generateResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return fmt.Errorf("gemini: failed to parse response: %w", err)
		}

		if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("gemini: no candidates in response")
		}

		text = apiResp.Candidates[0].Content.Parts[0].Text
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// ParseSummaryPayload parses model output into a SummaryPayload. The model
// is instructed to return bare JSON but may wrap it in a markdown fence or
// return prose, so parsing falls back in three tiers: direct JSON, fenced
// ```json block, then ErrNotJSON.
func ParseSummaryPayload(text string) (*SummaryPayload, error) {
	trimmed := strings.TrimSpace(text)

	var payload SummaryPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err == nil {
		return &payload, nil
	}

	if m := fencedJSON.FindStringSubmatch(trimmed); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &payload); err == nil {
			return &payload, nil
		}
	}

	return nil, ErrNotJSON
}
