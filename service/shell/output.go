package shell

import "fmt"

// Command is the result of a single command.
type Command struct {
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Output aggregates the results of an Input.
type Output struct {
	Commands []*Command        `json:"commands,omitempty"`
	Stdout   string            `json:"stdout,omitempty"`
	Stderr   string            `json:"stderr,omitempty"`
	Status   int               `json:"status,omitempty"`
	Exports  map[string]string `json:"exports,omitempty"`
}

// ExitError reports a command that exited with a non zero status.
type ExitError struct {
	Command string
	Status  int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q exited with %d: %s", e.Command, e.Status, e.Stderr)
	}
	return fmt.Sprintf("command %q exited with %d", e.Command, e.Status)
}
