// Package console is the terminal boundary of the study assistant: prompts, plain output,
// severity-tagged notices, and a slog handler that surfaces warnings to the user.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a user-facing notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Tag returns the bracketed prefix printed before a notice.
func (l Level) Tag() string {
	switch l {
	case LevelWarning:
		return "[WARNING]"
	case LevelError:
		return "[ERROR]"
	}
	return "[INFO]"
}

// Console reads answers from in and writes to out. Colors are applied only when
// out is a terminal.
type Console struct {
	mu      sync.Mutex
	in      *bufio.Reader
	out     io.Writer
	pending chan readResult // read still in flight after a cancelled ReadLine

	infoStyle    lipgloss.Style
	warningStyle lipgloss.Style
	errorStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	promptStyle  lipgloss.Style
}

// New returns a Console over in and out.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:           bufio.NewReader(in),
		out:          out,
		infoStyle:    r.NewStyle().Foreground(lipgloss.Color("14")),            // cyan
		warningStyle: r.NewStyle().Foreground(lipgloss.Color("11")),            // yellow
		errorStyle:   r.NewStyle().Foreground(lipgloss.Color("9")),             // red
		headerStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("69")), // purple
		promptStyle:  r.NewStyle().Foreground(lipgloss.Color("12")),            // blue
	}
}

type readResult struct {
	line string
	err  error
}

// ReadLine prints prompt and returns the next input line without its line ending.
// It returns io.EOF once input is exhausted and ctx.Err() as soon as ctx is done.
// A read interrupted by ctx is handed to the next ReadLine call.
func (c *Console) ReadLine(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	if prompt != "" {
		fmt.Fprint(c.out, c.promptStyle.Render(prompt))
	}
	if c.pending == nil {
		ch := make(chan readResult, 1)
		c.pending = ch
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- readResult{line: line, err: err}
		}()
	}
	ch := c.pending
	c.mu.Unlock()

	var r readResult
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r = <-ch:
	}
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()

	if r.err != nil {
		if errors.Is(r.err, io.EOF) && r.line != "" {
			return strings.TrimRight(r.line, "\r\n"), nil
		}
		return "", r.err
	}
	return strings.TrimRight(r.line, "\r\n"), nil
}

// Println writes lines verbatim.
func (c *Console) Println(lines ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range lines {
		fmt.Fprintln(c.out, l)
	}
}

// Header writes a bold section header.
func (c *Console) Header(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, c.headerStyle.Render(text))
}

// Notice writes one "[LEVEL] text" line.
func (c *Console) Notice(level Level, text string) {
	style := c.infoStyle
	switch level {
	case LevelWarning:
		style = c.warningStyle
	case LevelError:
		style = c.errorStyle
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, style.Render(level.Tag()+" "+text))
}
