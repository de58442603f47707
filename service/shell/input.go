package shell

// Input describes commands to run in one shell session.
type Input struct {
	Workdir      string            `json:"workdir,omitempty" yaml:"workdir,omitempty"`
	Env          map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	Commands     []string          `json:"commands,omitempty" yaml:"commands,omitempty"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	AbortOnError *bool             `json:"abortOnError,omitempty" yaml:"abortOnError,omitempty"`
}

func (i *Input) abortOnError() bool {
	return i.AbortOnError == nil || *i.AbortOnError
}
