package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sasanktumpati/polyglot/internal/languages"
	"github.com/sasanktumpati/polyglot/internal/providers"
)

func TestLocalDetector_ScriptBasedLanguages(t *testing.T) {
	registry, err := languages.FromTags(supported)
	require.NoError(t, err)
	router := New(registry, LocalDetector{})

	cases := map[string]string{
		"你好吗？":    "Chinese",
		"お元気ですか?": "Japanese",
	}
	for query, want := range cases {
		decision, err := router.Route(context.Background(), query)
		require.NoError(t, err)
		require.Equal(t, Dispatch, decision.Kind, "query %q detected as %q", query, decision.Detected)
		require.Equal(t, want, decision.Responder.Tag)
	}
}

func TestLocalDetector_MinConfidenceReportsUnknown(t *testing.T) {
	got, err := LocalDetector{MinConfidence: 1.1}.Detect(context.Background(), "你好吗？")
	require.NoError(t, err)
	require.Empty(t, got.Language)
}

// countingDetector answers from scenarioQueries and records what it saw.
type countingDetector struct {
	seen []string
}

func (c *countingDetector) Detect(_ context.Context, query string) (Detection, error) {
	c.seen = append(c.seen, query)
	return Detection{Language: scenarioQueries[query], Confidence: 0.95}, nil
}

func TestLocalDetector_ShortLatinQueriesUseFallback(t *testing.T) {
	req := require.New(t)
	registry, err := languages.FromTags(supported)
	req.NoError(err)
	fallback := &countingDetector{}
	router := New(registry, LocalDetector{MinConfidence: 0.8, Fallback: fallback})

	cases := map[string]string{
		"How are you?": "English",
		"你好吗？":         "Chinese",
		"お元気ですか?":      "Japanese",
	}
	for query, want := range cases {
		decision, err := router.Route(context.Background(), query)
		req.NoError(err)
		req.Equal(Dispatch, decision.Kind, "query %q detected as %q", query, decision.Detected)
		req.Equal(want, decision.Responder.Tag)
	}

	req.Contains(fallback.seen, "How are you?")
	req.NotContains(fallback.seen, "你好吗？")
	req.NotContains(fallback.seen, "お元気ですか?")
}

func TestLocalDetector_UntrustedGuessWithoutFallbackIsUndetected(t *testing.T) {
	req := require.New(t)
	registry, err := languages.FromTags(supported)
	req.NoError(err)
	router := New(registry, LocalDetector{MinConfidence: 0.8})

	decision, err := router.Route(context.Background(), "How are you?")
	req.NoError(err)
	req.Equal(Fallback, decision.Kind)
	req.Empty(decision.Detected)
}

func TestLocalDetector_FallbackErrorPassesThrough(t *testing.T) {
	boom := errors.New("classifier unavailable")
	detector := LocalDetector{
		MinConfidence: 0.8,
		Fallback: DetectorFunc(func(context.Context, string) (Detection, error) {
			return Detection{}, boom
		}),
	}
	_, err := detector.Detect(context.Background(), "Hi")
	require.ErrorIs(t, err, boom)
}

type stubClient struct {
	text string
	err  error
	last providers.AskRequest
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) ListModels(context.Context) ([]providers.Model, error) { return nil, nil }

func (s *stubClient) Ask(_ context.Context, req providers.AskRequest) (providers.AskResponse, error) {
	s.last = req
	return providers.AskResponse{Text: s.text}, s.err
}

func (s *stubClient) Stream(context.Context, providers.AskRequest, providers.ChunkFunc) error {
	return errors.New("not used")
}

func TestModelDetector_ParsesClassification(t *testing.T) {
	req := require.New(t)
	client := &stubClient{text: "```json\n{\"language\":\"french\",\"confidence\":0.97}\n```"}
	detector := ModelDetector{Client: client, Model: "gemini-2.0-flash", Supported: supported}

	got, err := detector.Detect(context.Background(), "Comment allez-vous?")
	req.NoError(err)
	req.Equal("french", got.Language)
	req.InDelta(0.97, got.Confidence, 1e-9)

	req.Equal("gemini-2.0-flash", client.last.Model)
	req.Equal("Comment allez-vous?", client.last.Question)
	req.True(client.last.ExpectJSON)
	req.Contains(client.last.Prompt, "English, Japanese, Chinese, German")
}

func TestModelDetector_RoutesThroughCanonicalNames(t *testing.T) {
	req := require.New(t)
	registry, err := languages.FromTags(supported)
	req.NoError(err)
	router := New(registry, ModelDetector{
		Client:    &stubClient{text: `{"language":"mandarin","confidence":0.8}`},
		Model:     "m",
		Supported: supported,
	})

	decision, err := router.Route(context.Background(), "你好吗？")
	req.NoError(err)
	req.Equal(Dispatch, decision.Kind)
	req.Equal("Chinese", decision.Responder.Tag)
}

func TestModelDetector_UnreadableAnswerIsUpstream(t *testing.T) {
	detector := ModelDetector{Client: &stubClient{text: "It is French."}, Model: "m"}
	_, err := detector.Detect(context.Background(), "Comment allez-vous?")
	require.True(t, providers.IsUpstream(err), "err = %v", err)
}

func TestModelDetector_ClientErrorPassesThrough(t *testing.T) {
	boom := errors.New("connection reset")
	detector := ModelDetector{Client: &stubClient{err: boom}, Model: "m"}
	_, err := detector.Detect(context.Background(), "q")
	require.ErrorIs(t, err, boom)
}
