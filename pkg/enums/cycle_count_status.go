package enums

import "fmt"

// CycleCountLineStatus tracks a single audit line inside a batch.
type CycleCountLineStatus string

const (
	CycleCountLineOpen      CycleCountLineStatus = "Open"
	CycleCountLineCompleted CycleCountLineStatus = "Completed"
	CycleCountLineCanceled  CycleCountLineStatus = "Canceled"
)

var validCycleCountLineStatuses = []CycleCountLineStatus{
	CycleCountLineOpen,
	CycleCountLineCompleted,
	CycleCountLineCanceled,
}

// IsValid reports whether the value matches a known line status.
func (s CycleCountLineStatus) IsValid() bool {
	for _, candidate := range validCycleCountLineStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the line can no longer change.
func (s CycleCountLineStatus) Terminal() bool {
	return s == CycleCountLineCompleted || s == CycleCountLineCanceled
}

// ParseCycleCountLineStatus converts raw input into a CycleCountLineStatus.
func ParseCycleCountLineStatus(value string) (CycleCountLineStatus, error) {
	for _, candidate := range validCycleCountLineStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cycle count line status %q", value)
}

// CycleCountBatchStatus is derived from the line statuses of a batch.
type CycleCountBatchStatus string

const (
	CycleCountBatchOpen       CycleCountBatchStatus = "Open"
	CycleCountBatchInProgress CycleCountBatchStatus = "In Progress"
	CycleCountBatchCompleted  CycleCountBatchStatus = "Completed"
)
