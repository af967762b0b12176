package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type geminiClient struct {
	apiKey  string
	base    string
	http    *http.Client
	headers map[string]string
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

func newGeminiClient(opts ClientOptions) Client {
	base := opts.BaseURL
	if strings.TrimSpace(base) == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	headers := map[string]string{}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	return &geminiClient{
		apiKey:  strings.TrimSpace(opts.APIKey),
		base:    strings.TrimRight(strings.TrimSpace(base), "/"),
		http:    defaultHTTPClient(opts.HTTPClient),
		headers: headers,
	}
}

func (c *geminiClient) Name() string { return "gemini" }

func (c *geminiClient) ListModels(ctx context.Context) ([]Model, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY not configured")
	}

	req, err := http.NewRequest(http.MethodGet, joinURL(c.base, "/models"), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	var resp struct {
		Models []struct {
			Name                       string   `json:"name"`
			DisplayName                string   `json:"displayName"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := doJSON(ctx, c.http, c.Name(), req, nil, &resp); err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		if !supportsGenerateContent(m.SupportedGenerationMethods) {
			continue
		}
		id := strings.TrimPrefix(strings.TrimSpace(m.Name), "models/")
		if id == "" {
			continue
		}
		display := strings.TrimSpace(m.DisplayName)
		if display == "" {
			display = id
		}
		models = append(models, Model{ID: id, DisplayName: display})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func (c *geminiClient) Ask(ctx context.Context, reqBody AskRequest) (AskResponse, error) {
	model, err := c.prepare(reqBody)
	if err != nil {
		return AskResponse{}, err
	}

	path := fmt.Sprintf("/models/%s:generateContent", model)
	payload := c.payload(reqBody, reqBody.ExpectJSON)

	var resp geminiResponse
	err = c.post(ctx, path, payload, &resp)
	if err != nil && reqBody.ExpectJSON && responseFormatLikelyUnsupported(err) {
		err = c.post(ctx, path, c.payload(reqBody, false), &resp)
	}
	if err != nil {
		return AskResponse{}, err
	}
	if len(resp.Candidates) == 0 {
		return AskResponse{}, blockedOrEmpty(resp)
	}

	text := strings.TrimSpace(resp.text())
	if text == "" {
		return AskResponse{}, badResponse(c.Name(), "response had no text parts")
	}
	return AskResponse{Text: text}, nil
}

func (c *geminiClient) Stream(ctx context.Context, reqBody AskRequest, fn ChunkFunc) error {
	model, err := c.prepare(reqBody)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/models/%s:streamGenerateContent?alt=sse", model)
	req, err := http.NewRequest(http.MethodPost, joinURL(c.base, path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	body, err := openStream(ctx, c.http, c.Name(), req, c.payload(reqBody, false))
	if err != nil {
		return err
	}
	defer body.Close()

	return readSSE(ctx, c.Name(), body, func(_ string, data string) error {
		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return badResponse(c.Name(), "decode stream chunk: %w", err)
		}
		if len(chunk.Candidates) == 0 && chunk.PromptFeedback != nil {
			return blockedOrEmpty(chunk)
		}
		if text := chunk.text(); text != "" {
			return fn(text)
		}
		return nil
	})
}

func (c *geminiClient) prepare(reqBody AskRequest) (string, error) {
	if err := validateAskRequest(reqBody); err != nil {
		return "", err
	}
	if c.apiKey == "" {
		return "", fmt.Errorf("GOOGLE_API_KEY not configured")
	}
	model := strings.TrimPrefix(strings.TrimSpace(reqBody.Model), "models/")
	if model == "" {
		return "", fmt.Errorf("model is required")
	}
	return model, nil
}

func (c *geminiClient) payload(reqBody AskRequest, jsonOutput bool) map[string]any {
	generation := map[string]any{
		"temperature": 0.2,
	}
	if jsonOutput {
		generation["responseMimeType"] = "application/json"
	}
	return map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": reqBody.Prompt}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": reqBody.Question}},
			},
		},
		"generationConfig": generation,
	}
}

func (c *geminiClient) post(ctx context.Context, path string, payload any, out any) error {
	req, err := http.NewRequest(http.MethodPost, joinURL(c.base, path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	return doJSON(ctx, c.http, c.Name(), req, payload, out)
}

func (c *geminiClient) setHeaders(req *http.Request) {
	req.Header.Set("x-goog-api-key", c.apiKey)
	for k, v := range c.headers {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			continue
		}
		req.Header.Set(k, v)
	}
}

func blockedOrEmpty(resp geminiResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &UpstreamError{Provider: "gemini", Err: fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)}
	}
	return badResponse("gemini", "no candidates returned")
}

func supportsGenerateContent(methods []string) bool {
	for _, method := range methods {
		if strings.EqualFold(strings.TrimSpace(method), "generateContent") {
			return true
		}
	}
	return false
}
