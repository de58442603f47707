package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/viant/guidebook/model/graph"
	"github.com/viant/guidebook/model/types"
)

const priorHint = "◄ prior choice"

// Service reads answers line by line.
type Service struct {
	mux    sync.Mutex
	reader *bufio.Reader
	out    io.Writer
	title  lipgloss.Style
	faint  lipgloss.Style
	errors lipgloss.Style
}

// New returns a Service bound to stdin and stdout.
func New() *Service {
	return NewWithIO(os.Stdin, os.Stdout)
}

// NewWithIO binds the service to the supplied streams.
func NewWithIO(in io.Reader, out io.Writer) *Service {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	renderer := lipgloss.NewRenderer(out)
	return &Service{
		reader: bufio.NewReader(in),
		out:    out,
		title:  renderer.NewStyle().Bold(true),
		faint:  renderer.NewStyle().Faint(true),
		errors: renderer.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Select asks for exactly one option. The reply may be an option number or
// its title; an empty reply accepts the suggestion.
func (s *Service) Select(ctx context.Context, question *Question) (string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	options := s.ordered(question)
	for {
		s.render(question, options)
		reply, err := s.readLine(ctx)
		if err != nil {
			return "", err
		}
		if reply == "" {
			if suggestion := question.Suggestion(); suggestion != "" {
				return suggestion, nil
			}
			continue
		}
		if selected, ok := match(reply, options); ok {
			return selected, nil
		}
		fmt.Fprintln(s.out, s.errors.Render(fmt.Sprintf("%q is not an option", reply)))
	}
}

// MultiSelect asks for any number of options separated by commas.
func (s *Service) MultiSelect(ctx context.Context, question *Question) ([]string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	options := s.ordered(question)
	for {
		s.render(question, options)
		reply, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if reply == "" {
			if suggestions := question.ValidSuggestions(); len(suggestions) > 0 {
				return suggestions, nil
			}
			continue
		}
		var selected []string
		valid := true
		for _, part := range strings.Split(reply, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			value, ok := match(part, options)
			if !ok {
				fmt.Fprintln(s.out, s.errors.Render(fmt.Sprintf("%q is not an option", part)))
				valid = false
				break
			}
			selected = append(selected, value)
		}
		if valid && len(selected) > 0 {
			return selected, nil
		}
	}
}

// Form asks for every field in turn. Prior values act as defaults.
func (s *Service) Form(ctx context.Context, title string, fields []*graph.Field, prior map[string]string) (map[string]string, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	values := make(map[string]string, len(fields))
	if title != "" {
		fmt.Fprintln(s.out, s.title.Render(title))
	}
	for _, field := range fields {
		label := strings.TrimSpace(field.Label)
		if label == "" {
			label = field.Key()
		}
		fallback := field.Default
		if value, ok := prior[field.Key()]; ok {
			fallback = value
		}
		var prompt strings.Builder
		prompt.WriteString(label)
		for i, option := range field.Options {
			if i == 0 {
				prompt.WriteString(" (")
			} else {
				prompt.WriteString(", ")
			}
			prompt.WriteString(fmt.Sprintf("%d:%s", i+1, option))
		}
		if len(field.Options) > 0 {
			prompt.WriteString(")")
		}
		if fallback != "" {
			prompt.WriteString(" " + s.faint.Render("["+fallback+"]"))
		}
		prompt.WriteString(": ")
		fmt.Fprint(s.out, prompt.String())

		reply, err := s.readLine(ctx)
		if err != nil {
			return nil, err
		}
		if reply == "" {
			reply = fallback
		}
		if len(field.Options) > 0 {
			if selected, ok := match(reply, field.Options); ok {
				reply = selected
			}
		}
		values[field.Key()] = reply
	}
	return values, nil
}

// Confirm asks a yes/no question; an empty reply means yes.
func (s *Service) Confirm(ctx context.Context, message string) (bool, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for {
		fmt.Fprintf(s.out, "%s %s ", s.title.Render(message), s.faint.Render("[Y/n]"))
		reply, err := s.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(reply) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// ordered floats suggestions to the top, keeping the declared order
// otherwise.
func (s *Service) ordered(question *Question) []string {
	suggested := map[string]bool{}
	var ret []string
	for _, suggestion := range question.Suggestions {
		for _, option := range question.Options {
			if option == suggestion && !suggested[option] {
				suggested[option] = true
				ret = append(ret, option)
			}
		}
	}
	for _, option := range question.Options {
		if !suggested[option] {
			ret = append(ret, option)
		}
	}
	return ret
}

func (s *Service) render(question *Question, options []string) {
	fmt.Fprintln(s.out, s.title.Render(question.Title))
	if question.Description != "" {
		fmt.Fprintln(s.out, s.faint.Render(question.Description))
	}
	suggested := map[string]bool{}
	for _, suggestion := range question.ValidSuggestions() {
		suggested[suggestion] = true
	}
	for i, option := range options {
		line := fmt.Sprintf("  %d) %s", i+1, option)
		if suggested[option] {
			line += " " + s.faint.Render(priorHint)
		}
		fmt.Fprintln(s.out, line)
	}
	fmt.Fprint(s.out, "> ")
}

// readLine returns types.ErrCanceled when input ends or ctx is done.
func (s *Service) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", types.ErrCanceled
	}
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", types.ErrCanceled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// match resolves a reply given as a 1-based index or a case-insensitive
// title.
func match(reply string, options []string) (string, bool) {
	if idx, err := strconv.Atoi(reply); err == nil {
		if idx >= 1 && idx <= len(options) {
			return options[idx-1], true
		}
		return "", false
	}
	for _, option := range options {
		if strings.EqualFold(option, reply) {
			return option, true
		}
	}
	return "", false
}
