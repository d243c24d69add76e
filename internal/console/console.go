// Package console runs the interactive menus of the recipe and web-store
// programs.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

const separator = "================================"

// Option is one numbered menu entry.
type Option struct {
	Label string
	Run   func(ctx context.Context, p *Prompter) error
}

// Menu lists its options as 1..N; 0 always exits.
type Menu struct {
	Title   string
	Options []Option
}

// Run shows menu until the user selects 0 or the input ends. Errors returned
// by an option are printed and the loop continues.
func Run(ctx context.Context, menu Menu, in io.Reader, out io.Writer, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	p := NewPrompter(in, out)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Printf("\n=== %s ===\n", menu.Title)
		for i, o := range menu.Options {
			p.Printf("%d. %s\n", i+1, o.Label)
		}
		p.Printf("0. Exit\n")

		choice, err := p.Line("Select an option")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		p.Printf("\n")

		if choice == "0" {
			return nil
		}
		option, ok := lookup(menu, choice)
		if !ok {
			p.Printf("Invalid selection. Try again.\n")
			continue
		}
		if err := option.Run(ctx, p); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			p.Printf("Error: %v\n", err)
			logger.Printf("%s: %v", option.Label, err)
		}
		p.Printf("%s\n", separator)
	}
}

func lookup(menu Menu, choice string) (Option, bool) {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(menu.Options) {
		return Option{}, false
	}
	return menu.Options[n-1], true
}

// Prompter reads one line per prompt.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Line prompts for label and returns the trimmed answer. It returns io.EOF
// when the input is exhausted.
func (p *Prompter) Line(label string) (string, error) {
	p.Printf("%s: ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}
