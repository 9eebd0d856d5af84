package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// errAborted is returned when the input ends before an answer is given.
var errAborted = errors.New("input closed")

// prompter asks for form fields line by line.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// ask prints label and returns the trimmed answer. An empty answer is
// allowed; use askRequired to insist on one.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errAborted
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *prompter) askRequired(label string) (string, error) {
	for {
		answer, err := p.ask(label)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// orAsk returns value when set and prompts for it otherwise.
func (p *prompter) orAsk(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return p.askRequired(label)
}
