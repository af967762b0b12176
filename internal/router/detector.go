package router

import (
	"context"
	"fmt"

	"github.com/abadojack/whatlanggo"

	"github.com/sasanktumpati/polyglot/internal/assistant"
	"github.com/sasanktumpati/polyglot/internal/providers"
)

// Detection is a detector's single best guess for a query.
type Detection struct {
	Language   string
	Confidence float64
}

// Detector names the natural language of a query.
type Detector interface {
	Detect(ctx context.Context, query string) (Detection, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, query string) (Detection, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context, query string) (Detection, error) {
	return f(ctx, query)
}

// LocalDetector classifies text offline with whatlanggo. Guesses it does
// not trust are handed to Fallback, or reported as unknown without one.
type LocalDetector struct {
	// MinConfidence a guess must reach to be used. Zero defers to
	// whatlanggo's reliability threshold.
	MinConfidence float64
	Fallback      Detector
}

// Detect fails only when Fallback does.
func (d LocalDetector) Detect(ctx context.Context, query string) (Detection, error) {
	info := whatlanggo.Detect(query)
	name := info.Lang.String()
	if name != "" && d.trusted(&info) {
		return Detection{Language: name, Confidence: info.Confidence}, nil
	}
	if d.Fallback != nil {
		return d.Fallback.Detect(ctx, query)
	}
	return Detection{Confidence: info.Confidence}, nil
}

func (d LocalDetector) trusted(info *whatlanggo.Info) bool {
	if d.MinConfidence > 0 {
		return info.Confidence >= d.MinConfidence
	}
	return info.IsReliable()
}

// ModelDetector asks the hosted model to classify the query.
type ModelDetector struct {
	Client    providers.Client
	Model     string
	Supported []string
}

// Detect performs one model call. Failures are returned as-is.
func (d ModelDetector) Detect(ctx context.Context, query string) (Detection, error) {
	resp, err := d.Client.Ask(ctx, providers.AskRequest{
		Model:      d.Model,
		Prompt:     assistant.ClassifierPrompt(d.Supported),
		Question:   query,
		ExpectJSON: true,
	})
	if err != nil {
		return Detection{}, err
	}
	parsed, err := assistant.ParseClassification(resp.Text)
	if err != nil {
		return Detection{}, &providers.UpstreamError{
			Provider: d.Client.Name(),
			Err:      fmt.Errorf("unreadable classification: %w", err),
		}
	}
	return Detection{Language: parsed.Language, Confidence: parsed.Confidence}, nil
}
