package models

// Status classifies how full a container or location is.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusPartial Status = "partial"
	StatusFull    Status = "full"
)

// Fill-level thresholds the backend applies when it recomputes a status.
// Clients render whatever status the backend reports and never apply these
// thresholds themselves.
const (
	FullThreshold    = 70.0
	PartialThreshold = 30.0
)

// StatusForFillLevel maps a 0-100 fill level to a status. Server-side only.
func StatusForFillLevel(fillLevel float64) Status {
	switch {
	case fillLevel >= FullThreshold:
		return StatusFull
	case fillLevel >= PartialThreshold:
		return StatusPartial
	default:
		return StatusEmpty
	}
}

// IsValidStatus checks if a status is one of the three known values.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusEmpty, StatusPartial, StatusFull:
		return true
	default:
		return false
	}
}
