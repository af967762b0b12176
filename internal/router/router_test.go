package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sasanktumpati/polyglot/internal/languages"
	"github.com/sasanktumpati/polyglot/internal/providers"
)

var supported = []string{"English", "Japanese", "Chinese", "German"}

// fixedDetector reports the language listed for each known query.
func fixedDetector(known map[string]string) DetectorFunc {
	return func(_ context.Context, query string) (Detection, error) {
		return Detection{Language: known[query], Confidence: 0.9}, nil
	}
}

var scenarioQueries = map[string]string{
	"How are you?":        "English",
	"你好吗？":                "Mandarin",
	"お元気ですか?":             "Japanese",
	"Wie geht es Ihnen?":  "german",
	"Comment allez-vous?": "French",
	"Come stai?":          "Italian",
}

func newRouter(t *testing.T, tags []string) *Router {
	t.Helper()
	registry, err := languages.FromTags(tags)
	require.NoError(t, err)
	return New(registry, fixedDetector(scenarioQueries))
}

func TestRoute_SupportedLanguagesDispatch(t *testing.T) {
	router := newRouter(t, supported)

	cases := map[string]string{
		"How are you?":       "English",
		"你好吗？":               "Chinese",
		"お元気ですか?":            "Japanese",
		"Wie geht es Ihnen?": "German",
	}
	for query, want := range cases {
		t.Run(want, func(t *testing.T) {
			req := require.New(t)
			decision, err := router.Route(context.Background(), query)
			req.NoError(err)
			req.True(decision.Dispatched())
			req.Equal(Dispatch, decision.Kind)
			req.Equal(want, decision.Responder.Tag)
			req.Equal(want, decision.Detected)
			req.Empty(decision.Fallback)
		})
	}
}

func TestRoute_LowercaseTagsDispatch(t *testing.T) {
	req := require.New(t)
	router := newRouter(t, []string{"english", " german "})

	decision, err := router.Route(context.Background(), "How are you?")
	req.NoError(err)
	req.Equal(Dispatch, decision.Kind)
	req.Equal("English", decision.Responder.Tag)

	decision, err = router.Route(context.Background(), "Wie geht es Ihnen?")
	req.NoError(err)
	req.Equal(Dispatch, decision.Kind)
	req.Equal("German", decision.Responder.Tag)
	req.Equal([]string{"English", "German"}, router.Languages())
}

func TestRoute_UnsupportedLanguageFallsBack(t *testing.T) {
	req := require.New(t)
	router := newRouter(t, supported)

	decision, err := router.Route(context.Background(), "Comment allez-vous?")
	req.NoError(err)
	req.Equal(Fallback, decision.Kind)
	req.Equal("French", decision.Detected)
	req.Equal("I can only answer in the following languages: English, Japanese, Chinese, German. "+
		"Please ask your question in one of these languages.", decision.Fallback)
	req.Empty(decision.Responder.Tag)
}

func TestRoute_FallbackListsEveryTagOnceInRegistryOrder(t *testing.T) {
	req := require.New(t)
	tags := []string{"German", "English", "Japanese"}
	router := newRouter(t, tags)

	decision, err := router.Route(context.Background(), "Come stai?")
	req.NoError(err)
	req.Equal(Fallback, decision.Kind)

	for _, tag := range tags {
		req.Equal(1, strings.Count(decision.Fallback, tag), "tag %s", tag)
	}
	req.Contains(decision.Fallback, "German, English, Japanese.")
}

func TestRoute_UndetectedLanguageFallsBack(t *testing.T) {
	req := require.New(t)
	router := newRouter(t, supported)

	decision, err := router.Route(context.Background(), "12345")
	req.NoError(err)
	req.Equal(Fallback, decision.Kind)
	req.Empty(decision.Detected)
	req.Equal(FallbackMessage(supported), decision.Fallback)
}

func TestRoute_IsIdempotent(t *testing.T) {
	req := require.New(t)
	router := newRouter(t, supported)

	for query := range scenarioQueries {
		first, err := router.Route(context.Background(), query)
		req.NoError(err)
		second, err := router.Route(context.Background(), query)
		req.NoError(err)
		req.Equal(first, second, "query %q", query)
	}
}

func TestRoute_EmptyRegistryAlwaysFallsBack(t *testing.T) {
	req := require.New(t)
	router := New(languages.NewRegistry(), fixedDetector(scenarioQueries))

	decision, err := router.Route(context.Background(), "How are you?")
	req.NoError(err)
	req.Equal(Fallback, decision.Kind)
	req.Equal("I can only answer in the following languages: . Please ask your question in one of these languages.", decision.Fallback)
}

func TestRoute_DetectorErrorIsPropagated(t *testing.T) {
	req := require.New(t)
	registry, err := languages.FromTags(supported)
	req.NoError(err)

	upstream := &providers.UpstreamError{Provider: "gemini", Status: "503 Service Unavailable"}
	router := New(registry, DetectorFunc(func(context.Context, string) (Detection, error) {
		return Detection{}, upstream
	}))

	_, err = router.Route(context.Background(), "How are you?")
	req.Error(err)

	var got *providers.UpstreamError
	req.True(errors.As(err, &got))
	req.Same(upstream, got)
}

func TestRoute_LanguagesMirrorsRegistry(t *testing.T) {
	require.Equal(t, supported, newRouter(t, supported).Languages())
}

func TestKindString(t *testing.T) {
	require.Equal(t, "dispatch", Dispatch.String())
	require.Equal(t, "fallback", Fallback.String())
	require.Equal(t, "Kind(7)", Kind(7).String())
}
