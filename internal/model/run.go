package model

import "time"

// RunMode identifies which aggregation a run performed.
type RunMode string

const (
	RunModeNationwide RunMode = "nationwide"
	RunModeCommute    RunMode = "commute"
)

// Profile is a named, saved AffordabilityInputs.
type Profile struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Inputs    AffordabilityInputs `json:"inputs"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Run records one aggregation over the housing table.
type Run struct {
	ID         string              `json:"id"`
	Mode       RunMode             `json:"mode"`
	Inputs     AffordabilityInputs `json:"inputs"`
	MaxPrice   *float64            `json:"max_price,omitempty"`
	ZipCount   int                 `json:"zip_count"`
	StateCount int                 `json:"state_count"`
	CreatedAt  time.Time           `json:"created_at"`
}
