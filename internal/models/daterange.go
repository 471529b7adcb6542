package models

// DateLayout is the ISO calendar date layout used for every stored date.
const DateLayout = "2006-01-02"

// DateRange is an inclusive ISO date range. Label is display metadata only.
type DateRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Contains reports whether an ISO date lies within the range. An empty bound
// is open. ISO dates sort lexicographically in date order.
func (r DateRange) Contains(date string) bool {
	return (r.Start == "" || date >= r.Start) && (r.End == "" || date <= r.End)
}

// IsZero reports whether the range is unset.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}
