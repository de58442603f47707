package model

// Profile remembers the answers given across sessions.
type Profile struct {
	Name         string            `json:"name" yaml:"name"`
	CreationTime int64             `json:"creationTime" yaml:"creationTime"`
	LastUsedTime int64             `json:"lastUsedTime" yaml:"lastUsedTime"`
	Choices      map[string]string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// NewProfile creates an empty profile created and used at nowMs.
func NewProfile(name string, nowMs int64) *Profile {
	return &Profile{Name: name, CreationTime: nowMs, LastUsedTime: nowMs, Choices: map[string]string{}}
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	ret := *p
	ret.Choices = make(map[string]string, len(p.Choices))
	for k, v := range p.Choices {
		ret.Choices[k] = v
	}
	return &ret
}
