package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type ollamaClient struct {
	base string
	http *http.Client
}

func newOllamaClient(opts ClientOptions) Client {
	base := opts.BaseURL
	if strings.TrimSpace(base) == "" {
		base = "http://127.0.0.1:11434"
	}
	return &ollamaClient{
		base: strings.TrimRight(strings.TrimSpace(base), "/"),
		http: defaultHTTPClient(opts.HTTPClient),
	}
}

func (c *ollamaClient) Name() string { return "ollama" }

func (c *ollamaClient) ListModels(ctx context.Context) ([]Model, error) {
	req, err := http.NewRequest(http.MethodGet, joinURL(c.base, "/api/tags"), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := doJSON(ctx, c.http, c.Name(), req, nil, &resp); err != nil {
		return nil, err
	}

	models := make([]Model, 0, len(resp.Models))
	for _, m := range resp.Models {
		id := strings.TrimSpace(m.Name)
		if id == "" {
			continue
		}
		models = append(models, Model{ID: id, DisplayName: id})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

func (c *ollamaClient) Ask(ctx context.Context, reqBody AskRequest) (AskResponse, error) {
	if err := validateAskRequest(reqBody); err != nil {
		return AskResponse{}, err
	}
	req, err := http.NewRequest(http.MethodPost, joinURL(c.base, "/api/chat"), nil)
	if err != nil {
		return AskResponse{}, fmt.Errorf("build request: %w", err)
	}

	payload := ollamaPayload(reqBody, false)
	if reqBody.ExpectJSON {
		payload["format"] = "json"
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := doJSON(ctx, c.http, c.Name(), req, payload, &resp); err != nil {
		return AskResponse{}, err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return AskResponse{}, badResponse(c.Name(), "response had empty content")
	}
	return AskResponse{Text: resp.Message.Content}, nil
}

func (c *ollamaClient) Stream(ctx context.Context, reqBody AskRequest, fn ChunkFunc) error {
	if err := validateAskRequest(reqBody); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, joinURL(c.base, "/api/chat"), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	body, err := openStream(ctx, c.http, c.Name(), req, ollamaPayload(reqBody, true))
	if err != nil {
		return err
	}
	defer body.Close()

	return readLines(ctx, c.Name(), body, func(line string) error {
		var chunk struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			Done  bool   `json:"done"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return badResponse(c.Name(), "decode stream chunk: %w", err)
		}
		if chunk.Error != "" {
			return &UpstreamError{Provider: c.Name(), Err: errors.New(chunk.Error)}
		}
		if chunk.Message.Content == "" {
			return nil
		}
		return fn(chunk.Message.Content)
	})
}

func ollamaPayload(reqBody AskRequest, stream bool) map[string]any {
	return map[string]any{
		"model": reqBody.Model,
		"messages": []map[string]string{
			{"role": "system", "content": reqBody.Prompt},
			{"role": "user", "content": reqBody.Question},
		},
		"stream": stream,
	}
}
