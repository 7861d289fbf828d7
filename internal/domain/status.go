package domain

import "time"

// StatusKind enumerates the closed set of exposure states. Transitions are
// monotonic in severity: Positive is absorbing, and an Exposed last-exposure
// date never moves backwards across accepted updates.
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusExposed
	StatusPositive
)

func (k StatusKind) String() string {
	switch k {
	case StatusNone:
		return "none"
	case StatusExposed:
		return "exposed"
	case StatusPositive:
		return "positive"
	}
	return "unknown"
}

// ParseStatusKind maps the persisted representation back to a kind.
func ParseStatusKind(s string) (StatusKind, bool) {
	switch s {
	case "none":
		return StatusNone, true
	case "exposed":
		return StatusExposed, true
	case "positive":
		return StatusPositive, true
	}
	return StatusNone, false
}

// ExposureStatus is the current user-level exposure state, held as a single
// process-wide value with one writer. LastExposureDate and Acknowledged are
// meaningful only when Kind is StatusExposed.
type ExposureStatus struct {
	Kind             StatusKind
	LastExposureDate time.Time
	Acknowledged     bool
}

func None() ExposureStatus { return ExposureStatus{Kind: StatusNone} }

func Exposed(lastExposure time.Time, acknowledged bool) ExposureStatus {
	return ExposureStatus{Kind: StatusExposed, LastExposureDate: lastExposure, Acknowledged: acknowledged}
}

func Positive() ExposureStatus { return ExposureStatus{Kind: StatusPositive} }

// Equal compares statuses by value, ignoring fields that carry no meaning
// for the kind at hand.
func (s ExposureStatus) Equal(o ExposureStatus) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case StatusExposed:
		return s.LastExposureDate.Equal(o.LastExposureDate) && s.Acknowledged == o.Acknowledged
	case StatusNone, StatusPositive:
		return true
	}
	return false
}
