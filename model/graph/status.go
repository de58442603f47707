package graph

// Status is the outcome of a validation.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "error"
)

func (s Status) IsSuccess() bool { return s == StatusSuccess }
