package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var spinnerTickInterval = 120 * time.Millisecond

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// spinner animates a label while a responder is working. After the first
// second the label carries the elapsed time.
type spinner struct {
	w     io.Writer
	label string
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func startSpinner(enabled bool, w io.Writer, label string) *spinner {
	s := &spinner{w: w, label: strings.TrimSpace(label)}
	if !enabled || w == nil {
		return s
	}
	if s.label == "" {
		s.label = "Thinking"
	}
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(spinnerTickInterval)
	defer ticker.Stop()

	start := time.Now()
	width := 0
	for frame := 0; ; frame++ {
		line := fmt.Sprintf("%c %s", spinnerFrames[frame%len(spinnerFrames)], s.label)
		if elapsed := time.Since(start); elapsed >= time.Second {
			line += fmt.Sprintf(" (%ds)", int(elapsed.Seconds()))
		}
		// Pad over the previous frame in case it was wider.
		n := utf8.RuneCountInString(line)
		fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", max(width-n, 0)))
		width = max(width, n)

		select {
		case <-s.done:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width))
			return
		case <-ticker.C:
		}
	}
}

// Stop clears the spinner line. It is safe to call more than once.
func (s *spinner) Stop() {
	if s.done == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
