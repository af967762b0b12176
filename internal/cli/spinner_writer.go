package cli

import (
	"io"
	"sync"
)

// answerWriter prints the answer prefix once, just before the first byte of
// the answer. The spinner is stopped first so the two never share a line.
type answerWriter struct {
	w       io.Writer
	prefix  string
	spinner *spinner
	once    sync.Once
}

func (a *answerWriter) begin() {
	a.once.Do(func() {
		if a.spinner != nil {
			a.spinner.Stop()
		}
		io.WriteString(a.w, a.prefix)
	})
}

func (a *answerWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		a.begin()
	}
	return a.w.Write(p)
}
