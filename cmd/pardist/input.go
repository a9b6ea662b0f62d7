package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/exascience/pardist"
)

// parseInt parses a decimal integer. Values that do not fit in 32 bits fail
// with pardist.ErrInvalidDomain.
func parseInt(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %v", pardist.ErrInvalidDomain, err)
	}
	return int(v), err
}

// A prompter reads whitespace-separated integers, printing a prompt before
// each group of values.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	scanner := bufio.NewScanner(in)
	scanner.Split(bufio.ScanWords)
	return &prompter{scanner: scanner, out: out}
}

func (p *prompter) next() (int, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return parseInt(p.scanner.Text())
}

// Int prints prompt and reads one integer.
func (p *prompter) Int(prompt string) (int, error) {
	fmt.Fprint(p.out, prompt)
	v, err := p.next()
	if err != nil {
		return 0, fmt.Errorf("reading %q: %w", prompt, err)
	}
	return v, nil
}

// Ints prints prompt and reads n integers.
func (p *prompter) Ints(prompt string, n int) ([]int, error) {
	fmt.Fprint(p.out, prompt)
	values := make([]int, 0, max(n, 0))
	for i := 0; i < n; i++ {
		v, err := p.next()
		if err != nil {
			return nil, fmt.Errorf("reading value %d of %d: %w", i+1, n, err)
		}
		values = append(values, v)
	}
	return values, nil
}
