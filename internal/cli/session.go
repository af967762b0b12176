package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sasanktumpati/polyglot/internal/render"
)

type demoExample struct {
	label string
	query string
}

var demoExamples = []demoExample{
	{"English", "How are you?"},
	{"Chinese", "你好吗？"},
	{"Japanese", "お元気ですか?"},
	{"German", "Wie geht es Ihnen?"},
	{"French (unsupported)", "Comment allez-vous?"},
	{"Italian (unsupported)", "Come stai?"},
}

func isExitCommand(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}

func (a *App) runChat(ctx context.Context) error {
	a.out.printHeader(a.stdout, a.team.Languages(), a.cfg.Debug)

	reader, err := newLineReader(a.stdin, a.stdout, a.stderr)
	if err != nil {
		return a.report(err)
	}
	defer reader.Close()

	for {
		fmt.Fprintln(a.stdout)
		line, err := reader.ReadLine(ctx, a.out.user("You: "))
		switch {
		case errors.Is(err, errInterrupted):
			a.endedByUser()
			return nil
		case errors.Is(err, io.EOF):
			a.goodbye()
			return nil
		case err != nil:
			return a.report(err)
		}

		if isExitCommand(line) {
			a.goodbye()
			return nil
		}
		if line == "" {
			continue
		}

		a.out.printRule(a.stdout)
		if a.cfg.Debug {
			a.out.printDebug(a.stdout, "Processing input: '%s'", line)
		}
		err = a.answer(ctx, line)
		fmt.Fprintln(a.stdout)
		a.out.printRule(a.stdout)
		if err != nil {
			if ctx.Err() != nil {
				a.endedByUser()
				return nil
			}
			a.out.printError(a.stderr, err.Error(), nil)
		}
	}
}

func (a *App) runSingle(ctx context.Context, query string) error {
	fmt.Fprintln(a.stdout, a.out.user("Query: "+query))
	if a.cfg.Debug {
		a.out.printDebug(a.stdout, "Processing single query: '%s'", query)
	}
	a.out.printRule(a.stdout)

	err := a.answer(ctx, query)
	fmt.Fprintln(a.stdout)
	if err != nil {
		if ctx.Err() != nil {
			a.endedByUser()
			return nil
		}
		return a.report(err)
	}
	return nil
}

func (a *App) runDemo(ctx context.Context) error {
	a.out.printHeader(a.stdout, a.team.Languages(), a.cfg.Debug)
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "Running demonstration with examples in different languages:")

	reader, err := newLineReader(a.stdin, a.stdout, a.stderr)
	if err != nil {
		return a.report(err)
	}
	defer reader.Close()

	for i, ex := range demoExamples {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, a.out.notice(fmt.Sprintf("%s: '%s'", ex.label, ex.query)))
		if a.cfg.Debug {
			a.out.printDebug(a.stdout, "Testing %s query", ex.label)
		}
		a.out.printRule(a.stdout)
		err := a.answer(ctx, ex.query)
		fmt.Fprintln(a.stdout)
		a.out.printRule(a.stdout)
		if err != nil {
			if ctx.Err() != nil {
				a.endedByUser()
				return nil
			}
			return a.report(err)
		}

		if i == len(demoExamples)-1 {
			break
		}
		fmt.Fprintln(a.stdout)
		cont, err := reader.ReadLine(ctx, a.out.notice("Press Enter to continue to next example (or 'q' to quit): "))
		switch {
		case errors.Is(err, errInterrupted):
			a.endedByUser()
			return nil
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return a.report(err)
		}
		if strings.EqualFold(cont, "q") {
			break
		}
	}
	return nil
}

// answer prints "AI: " followed by the team's answer to query. The spinner
// runs on stderr until the first byte of the answer is ready.
func (a *App) answer(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	out := &answerWriter{
		w:       a.stdout,
		prefix:  a.out.ai("AI: "),
		spinner: startSpinner(isTerminalWriter(a.stderr), a.stderr, "Thinking"),
	}
	defer out.begin()

	if !a.cfg.Stream {
		_, text, err := a.team.Answer(ctx, query)
		out.begin()
		if err != nil {
			return err
		}
		fmt.Fprint(out, render.Markdown(text, terminalWidth(a.stdout), a.cfg.RenderMarkdown))
		return nil
	}

	_, err := a.team.Respond(ctx, query, out)
	return err
}

func (a *App) goodbye() {
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, a.out.notice("Goodbye!"))
}

func (a *App) endedByUser() {
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, a.out.notice("Chat session ended by user."))
}
