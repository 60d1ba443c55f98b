package enums

import "fmt"

// GeneralStatus tracks the lifecycle of shares and orders. Shares move from
// waiting to accept/reject; orders additionally reach done once fulfilled.
type GeneralStatus string

const (
	StatusWaiting GeneralStatus = "waiting"
	StatusAccept  GeneralStatus = "accept"
	StatusReject  GeneralStatus = "reject"
	StatusDone    GeneralStatus = "done"
)

var validGeneralStatuses = []GeneralStatus{
	StatusWaiting,
	StatusAccept,
	StatusReject,
	StatusDone,
}

// String implements fmt.Stringer.
func (s GeneralStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known GeneralStatus.
func (s GeneralStatus) IsValid() bool {
	for _, candidate := range validGeneralStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseGeneralStatus converts raw input into a GeneralStatus.
func ParseGeneralStatus(value string) (GeneralStatus, error) {
	for _, candidate := range validGeneralStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid status %q", value)
}
