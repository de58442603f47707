package choice

// Operation names the mutation that produced a Change.
type Operation string

const (
	OperationSet    Operation = "set"
	OperationRemove Operation = "remove"
)

// Change describes a single mutation of the choice state.
type Change struct {
	Operation Operation `json:"operation"`
	Key       string    `json:"key"`
	Value     string    `json:"value,omitempty"`
	Previous  string    `json:"previous,omitempty"`
}
