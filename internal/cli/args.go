package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type options struct {
	Debug         bool
	Demo          bool
	NoStream      bool
	NoMarkdown    bool
	ListLanguages bool
	ShowHelp      bool
	ShowVersion   bool
	Provider      string
	Model         string
	Classifier    string
	MinConfidence *float64
	EnvFile       string
	Timeout       time.Duration
	Query         string
}

func parseArgs(args []string) (options, error) {
	opts := options{}
	text := func(dst *string) func(string) error {
		return func(v string) error { *dst = strings.TrimSpace(v); return nil }
	}
	on := func(dst *bool) func() {
		return func() { *dst = true }
	}

	fs := newFlagSet()
	fs.Switch("help", 'h', on(&opts.ShowHelp))
	fs.Switch("version", 'v', on(&opts.ShowVersion))
	fs.Switch("debug", 'd', on(&opts.Debug))
	fs.Switch("demo", 0, on(&opts.Demo))
	fs.Switch("languages", 0, on(&opts.ListLanguages))
	fs.Switch("no-stream", 0, on(&opts.NoStream))
	fs.Switch("no-markdown", 0, on(&opts.NoMarkdown))
	fs.Value("provider", 'p', text(&opts.Provider))
	fs.Value("model", 'm', text(&opts.Model))
	fs.Value("env-file", 0, text(&opts.EnvFile))
	fs.Value("classifier", 0, func(v string) error {
		v = strings.ToLower(strings.TrimSpace(v))
		switch v {
		case "auto", "local", "model":
			opts.Classifier = v
			return nil
		}
		return fmt.Errorf("--classifier must be auto, local or model, got %q", v)
	})
	fs.Value("min-confidence", 0, func(v string) error {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("--min-confidence must be a number between 0 and 1, got %q", v)
		}
		opts.MinConfidence = &f
		return nil
	})
	fs.Value("timeout", 0, func(v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		opts.Timeout = d
		return nil
	})

	words, err := fs.Parse(args)
	if err != nil {
		return opts, err
	}

	opts.Query = strings.TrimSpace(strings.Join(words, " "))
	if opts.Demo && opts.Query != "" {
		return opts, fmt.Errorf("--demo does not take a query")
	}
	return opts, nil
}

func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("timeout value is empty")
	}
	if strings.ContainsAny(raw, "hms") {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, err
		}
		if d <= 0 {
			return 0, fmt.Errorf("timeout must be positive")
		}
		return d, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		return 0, fmt.Errorf("timeout must be a positive integer seconds or duration")
	}
	return time.Duration(seconds) * time.Second, nil
}
