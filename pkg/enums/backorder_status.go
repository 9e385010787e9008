package enums

import (
	"fmt"
	"strings"
)

// BackorderStatus tracks an open shortage against a customer order.
type BackorderStatus string

const (
	BackorderOpen    BackorderStatus = "Open"
	BackorderPartial BackorderStatus = "Partial"
	BackorderClosed  BackorderStatus = "Closed"
)

var validBackorderStatuses = []BackorderStatus{
	BackorderOpen,
	BackorderPartial,
	BackorderClosed,
}

// IsValid reports whether the value matches a known backorder status.
func (s BackorderStatus) IsValid() bool {
	for _, candidate := range validBackorderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsClosed matches the legacy data case-insensitively; historical rows carry
// CLOSED as well as Closed.
func (s BackorderStatus) IsClosed() bool {
	return strings.EqualFold(string(s), string(BackorderClosed))
}

// ParseBackorderStatus converts raw input into a BackorderStatus.
func ParseBackorderStatus(value string) (BackorderStatus, error) {
	for _, candidate := range validBackorderStatuses {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid backorder status %q", value)
}
