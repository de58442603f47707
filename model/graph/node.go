package graph

import "strings"

// Kind identifies a node variant.
type Kind int

const (
	KindSequence Kind = iota + 1
	KindParallel
	KindChoice
	KindTitledSteps
	KindSubTask
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindSequence:
		return "sequence"
	case KindParallel:
		return "parallel"
	case KindChoice:
		return "choice"
	case KindTitledSteps:
		return "steps"
	case KindSubTask:
		return "subtask"
	case KindLeaf:
		return "leaf"
	}
	return "unknown"
}

// Node is a task graph node. A nil Node denotes an empty graph.
type Node interface {
	Kind() Kind
	Metadata() *Meta
}

type (
	// Meta carries attributes shared by every node variant.
	Meta struct {
		Key        string    `json:"key,omitempty" yaml:"key,omitempty"`
		Provenance []string  `json:"provenance,omitempty" yaml:"provenance,omitempty"`
		Validate   *Validate `json:"validate,omitempty" yaml:"validate,omitempty"`
	}

	// Validate describes how a node proves it is already satisfied: either
	// unconditionally (Always) or by a command that exits zero.
	Validate struct {
		Always  bool   `json:"always,omitempty" yaml:"always,omitempty"`
		Command string `json:"command,omitempty" yaml:"command,omitempty"`
	}

	Sequence struct {
		Meta
		Children []Node `json:"sequence" yaml:"sequence"`
	}

	Parallel struct {
		Meta
		Children []Node `json:"parallel" yaml:"parallel"`
	}

	// Choice is a decision point identified by GroupContext. Form, when set,
	// turns the decision into a multi-field question.
	Choice struct {
		Meta
		GroupContext string    `json:"group" yaml:"group"`
		Title        string    `json:"title,omitempty" yaml:"title,omitempty"`
		Options      []*Option `json:"options" yaml:"options"`
		Form         *Form     `json:"form,omitempty" yaml:"form,omitempty"`
	}

	Option struct {
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		Graph       Node   `json:"graph,omitempty" yaml:"graph,omitempty"`
	}

	Form struct {
		Fields []*Field `json:"fields" yaml:"fields"`
	}

	Field struct {
		Name    string   `json:"name" yaml:"name"`
		Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
		Options []string `json:"options,omitempty" yaml:"options,omitempty"`
		Default string   `json:"default,omitempty" yaml:"default,omitempty"`
	}

	TitledSteps struct {
		Meta
		Title       string  `json:"title,omitempty" yaml:"title,omitempty"`
		Description string  `json:"description,omitempty" yaml:"description,omitempty"`
		Steps       []*Step `json:"steps" yaml:"steps"`
	}

	Step struct {
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
		Graph       Node   `json:"graph,omitempty" yaml:"graph,omitempty"`
	}

	// SubTask nests a graph behind a display scope boundary, typically an
	// imported guidebook.
	SubTask struct {
		Meta
		Title string `json:"title,omitempty" yaml:"title,omitempty"`
		Graph Node   `json:"graph,omitempty" yaml:"graph,omitempty"`
	}

	// Leaf is a code block: the unit of actual work.
	Leaf struct {
		Meta
		Title    string `json:"title,omitempty" yaml:"title,omitempty"`
		Language string `json:"language,omitempty" yaml:"language,omitempty"`
		Body     string `json:"body" yaml:"body"`
		Optional bool   `json:"optional,omitempty" yaml:"optional,omitempty"`
		Memoize  bool   `json:"memoize,omitempty" yaml:"memoize,omitempty"`
	}
)

func (m *Meta) Metadata() *Meta { return m }

func (*Sequence) Kind() Kind    { return KindSequence }
func (*Parallel) Kind() Kind    { return KindParallel }
func (*Choice) Kind() Kind      { return KindChoice }
func (*TitledSteps) Kind() Kind { return KindTitledSteps }
func (*SubTask) Kind() Kind     { return KindSubTask }
func (*Leaf) Kind() Kind        { return KindLeaf }

// String returns the expression form of the validation, used as the
// status cache key for nodes without a Key.
func (v *Validate) String() string {
	if v == nil {
		return ""
	}
	if v.Always {
		return "true"
	}
	return v.Command
}

// UnmarshalYAML accepts either a boolean or a command string.
func (v *Validate) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var flag bool
	if err := unmarshal(&flag); err == nil {
		v.Always = flag
		return nil
	}
	var command string
	if err := unmarshal(&command); err != nil {
		return err
	}
	v.Command = strings.TrimSpace(command)
	return nil
}

// Option returns the option with the given title or nil.
func (c *Choice) Option(title string) *Option {
	for _, option := range c.Options {
		if option.Title == title {
			return option
		}
	}
	return nil
}

// Titles returns option titles in declaration order.
func (c *Choice) Titles() []string {
	result := make([]string, 0, len(c.Options))
	for _, option := range c.Options {
		result = append(result, option.Title)
	}
	return result
}

// IsForm reports whether the choice collects multiple field values.
func (c *Choice) IsForm() bool {
	return c.Form != nil && len(c.Form.Fields) > 0
}

// Key returns the field name, falling back to its label.
func (f *Field) Key() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Label
}

// WithProvenance appends provenance entries to the node.
func (m *Meta) WithProvenance(provenance ...string) *Meta {
	m.Provenance = append(m.Provenance, provenance...)
	return m
}
