package models

import (
	"encoding/json"
	"strconv"
)

// SizeEstimate is a bounded collection count. When the sample ceiling was
// reached it renders as "<ceiling>+" instead of a number.
type SizeEstimate struct {
	Count     int
	Saturated bool
}

func (s SizeEstimate) String() string {
	if s.Saturated {
		return strconv.Itoa(s.Count) + "+"
	}
	return strconv.Itoa(s.Count)
}

func (s SizeEstimate) MarshalJSON() ([]byte, error) {
	if s.Saturated {
		return json.Marshal(s.String())
	}
	return json.Marshal(s.Count)
}

type CollectionEstimate struct {
	EstimatedCount SizeEstimate `json:"estimatedCount"`
	HasEntries     bool         `json:"hasEntries"`
	SampleSize     int          `json:"sampleSize"`
}
