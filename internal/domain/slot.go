package domain

import "github.com/m04kA/HPS-BookingService/pkg/types"

// ResolvedSlot is a concrete bookable occurrence derived from a template
// for one calendar date. Never persisted and never cached: remaining
// capacity is recomputed on every read.
type ResolvedSlot struct {
	TemplateID         string
	Time               types.TimeString
	Capacity           int
	ConfirmedCount     int
	Remaining          int
	ServiceDescription string
}

// Available returns true if at least one seat remains
func (s *ResolvedSlot) Available() bool {
	return s.Remaining > 0
}

// IsFull returns true if no seats remain
func (s *ResolvedSlot) IsFull() bool {
	return s.Remaining <= 0
}
