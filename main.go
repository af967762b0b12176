// Command polyglot is a multi-language chat CLI that answers each question
// in the language it was asked, or explains which languages it supports.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sasanktumpati/polyglot/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
