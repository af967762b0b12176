package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/sasanktumpati/polyglot/internal/config"
	"github.com/sasanktumpati/polyglot/internal/languages"
	"github.com/sasanktumpati/polyglot/internal/providers"
	"github.com/sasanktumpati/polyglot/internal/router"
	"github.com/sasanktumpati/polyglot/internal/team"
)

// ErrReported marks errors that Run has already printed for the user.
var ErrReported = errors.New("error reported")

// clientFactory builds the model client for cfg.
var clientFactory = newClient

// App holds the streams and components of one CLI invocation.
type App struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	out    palette
	cfg    *config.Config
	log    *slog.Logger
	team   *team.Team
}

// Run executes the polyglot CLI with the provided process arguments and
// streams.
func Run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	opts, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opts.ShowHelp {
		printHelp(stdout)
		return nil
	}
	if opts.ShowVersion {
		fmt.Fprintln(stdout, version)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &App{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		out:    palette{enabled: isTerminalWriter(stdout)},
	}
	return app.run(ctx, opts)
}

func (a *App) run(ctx context.Context, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return a.report(err)
	}
	if opts.ListLanguages {
		for _, tag := range cfg.SupportedLanguages {
			fmt.Fprintln(a.stdout, tag)
		}
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return a.report(err)
	}

	a.cfg = cfg
	a.log = newLogger(a.stderr, cfg.Debug)
	if err := a.build(ctx); err != nil {
		return a.report(err)
	}

	switch {
	case opts.Demo:
		return a.runDemo(ctx)
	case opts.Query != "":
		return a.runSingle(ctx, opts.Query)
	default:
		return a.runChat(ctx)
	}
}

// loadConfig reads .env and the environment, then applies flag overrides.
func loadConfig(opts options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.Provider != "" {
		cfg.Provider = opts.Provider
	}
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Classifier != "" {
		cfg.Classifier = opts.Classifier
	}
	if opts.MinConfidence != nil {
		cfg.MinConfidence = *opts.MinConfidence
	}
	if opts.Timeout > 0 {
		cfg.Timeout = opts.Timeout
	}
	if opts.NoStream {
		cfg.Stream = false
	}
	if opts.NoMarkdown {
		cfg.RenderMarkdown = false
	}
	if opts.Debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// build wires the registry, router and team from the validated config.
func (a *App) build(ctx context.Context) error {
	registry, err := languages.FromTags(a.cfg.SupportedLanguages)
	if err != nil {
		return err
	}

	client, err := clientFactory(a.cfg)
	if err != nil {
		return err
	}

	model := a.cfg.ResolveModel()
	if model == "" {
		models, err := client.ListModels(ctx)
		if err != nil {
			return fmt.Errorf("no model set for provider %q and unable to list models: %w", a.cfg.Provider, err)
		}
		if len(models) == 0 {
			return fmt.Errorf("no models available for provider %q", a.cfg.Provider)
		}
		model = selectDefaultModel(models)
		a.log.Debug("model discovered", "provider", client.Name(), "model", model)
	}

	var detector router.Detector
	classify := router.ModelDetector{Client: client, Model: model, Supported: registry.Tags()}
	switch a.cfg.Classifier {
	case "model":
		detector = classify
	case "local":
		detector = router.LocalDetector{MinConfidence: a.cfg.MinConfidence}
	default:
		// Short queries rarely give whatlanggo a confident guess; those go
		// to the model.
		detector = router.LocalDetector{MinConfidence: a.cfg.MinConfidence, Fallback: classify}
	}

	r := router.New(registry, detector, router.WithLogger(a.log))
	a.team = team.New(r, client, team.Options{
		Model:    model,
		Markdown: a.cfg.RenderMarkdown && !a.cfg.Stream,
	}, a.log)
	a.log.Debug("team ready",
		"provider", client.Name(),
		"model", model,
		"classifier", a.cfg.Classifier,
		"languages", registry.Len())
	return nil
}

func newClient(cfg *config.Config) (providers.Client, error) {
	opts := providers.ClientOptions{
		APIKey:  cfg.ResolveAPIKey(),
		BaseURL: cfg.BaseURL,
	}
	if cfg.Provider == "custom" {
		return providers.NewOpenAICompatible(providers.OpenAICompatibleSettings{Name: "custom"}, opts)
	}
	return providers.New(cfg.Provider, opts)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// report prints err for the user and marks it as reported.
func (a *App) report(err error) error {
	var cerr *config.Error
	if errors.As(err, &cerr) {
		a.out.printError(a.stderr, cerr.Msg, cerr.Hint)
	} else {
		a.out.printError(a.stderr, err.Error(), nil)
	}
	return fmt.Errorf("%w: %w", ErrReported, err)
}

func selectDefaultModel(models []providers.Model) string {
	if len(models) == 0 {
		return ""
	}
	preferred := []string{"flash", "mini", "haiku", "small", "8b"}
	for _, token := range preferred {
		for _, m := range models {
			if strings.Contains(strings.ToLower(m.ID), token) {
				return m.ID
			}
		}
	}
	copyModels := make([]providers.Model, len(models))
	copy(copyModels, models)
	sort.Slice(copyModels, func(i, j int) bool { return copyModels[i].ID < copyModels[j].ID })
	return copyModels[0].ID
}
