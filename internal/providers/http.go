package providers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// streamBufferSize bounds a single SSE or NDJSON line.
const streamBufferSize = 1 << 20

func defaultHTTPClient(input *http.Client) *http.Client {
	if input != nil {
		return input
	}
	// Streams are bounded by the caller's context, not a client timeout.
	return &http.Client{Transport: &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 60 * time.Second,
	}}
}

func encodePayload(req *http.Request, payload any) error {
	if payload == nil {
		return nil
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request JSON: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(buf))
	req.ContentLength = int64(len(buf))
	req.Header.Set("Content-Type", "application/json")
	return nil
}

func doJSON(ctx context.Context, client *http.Client, provider string, req *http.Request, payload any, out any) error {
	if err := encodePayload(req, payload); err != nil {
		return err
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return &UpstreamError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Provider: provider, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return &UpstreamError{Provider: provider, Status: resp.Status, Body: truncate(string(body), 700)}
	}

	if out == nil {
		return nil
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return badResponse(provider, "decode response JSON: %w; body=%s", err, truncate(string(body), 700))
	}
	return nil
}

// openStream sends req and returns the response body once the provider has
// accepted the request. The caller closes the body.
func openStream(ctx context.Context, client *http.Client, provider string, req *http.Request, payload any) (io.ReadCloser, error) {
	if err := encodePayload(req, payload); err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &UpstreamError{Provider: provider, Err: err}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Provider: provider, Status: resp.Status, Body: truncate(string(body), 700)}
	}
	return resp.Body, nil
}

// readSSE calls fn with the event name and data of every server-sent event
// in r. Multi-line data fields are joined with "\n".
func readSSE(ctx context.Context, provider string, r io.Reader, fn func(event, data string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), streamBufferSize)

	var event string
	var data []string
	dispatch := func() error {
		defer func() {
			event = ""
			data = data[:0]
		}()
		if len(data) == 0 {
			return nil
		}
		return fn(event, strings.Join(data, "\n"))
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return streamReadError(ctx, provider, err)
	}
	return dispatch()
}

// readLines calls fn for every non-empty line of r (newline-delimited JSON).
func readLines(ctx context.Context, provider string, r io.Reader, fn func(line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), streamBufferSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return streamReadError(ctx, provider, err)
	}
	return nil
}

func streamReadError(ctx context.Context, provider string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &UpstreamError{Provider: provider, Err: fmt.Errorf("stream interrupted: %w", err)}
}

func validateAskRequest(req AskRequest) error {
	if strings.TrimSpace(req.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(req.Question) == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

func responseFormatLikelyUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "response_format") ||
		strings.Contains(msg, "responsemimetype") ||
		strings.Contains(msg, "response_mime_type")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func joinURL(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func ensureLeadingSlash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
