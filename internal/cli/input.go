package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// errInterrupted is returned by a lineReader when the user presses Ctrl+C at
// the prompt.
var errInterrupted = errors.New("interrupted")

type lineReader interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Close() error
}

// newLineReader picks readline for terminals and a buffered reader for
// pipes and tests.
func newLineReader(stdin io.Reader, stdout, stderr io.Writer) (lineReader, error) {
	if f, ok := stdin.(*os.File); ok && isTerminalFile(f) && isTerminalWriter(stdout) {
		return newReadlineReader(f, stdout, stderr)
	}
	return &bufferedReader{in: bufio.NewReader(stdin), out: stdout}, nil
}

type readlineReader struct {
	rl *readline.Instance
}

func newReadlineReader(stdin io.ReadCloser, stdout, stderr io.Writer) (*readlineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           stdin,
		Stdout:          stdout,
		Stderr:          stderr,
		HistoryLimit:    200,
	})
	if err != nil {
		return nil, fmt.Errorf("init prompt: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

// ReadLine blocks in raw mode, where Ctrl+C arrives as ErrInterrupt rather
// than a signal.
func (r *readlineReader) ReadLine(_ context.Context, prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", errInterrupted
	case err != nil:
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

type bufferedReader struct {
	in  *bufio.Reader
	out io.Writer
}

// ReadLine returns errInterrupted if ctx ends while waiting for input.
func (r *bufferedReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := r.in.ReadString('\n')
		done <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", errInterrupted
	case res := <-done:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}

func (r *bufferedReader) Close() error { return nil }
