package enums

import "fmt"

// ServiceType identifies the engagement product an order buys.
type ServiceType string

const (
	ServiceTypeLikes    ServiceType = "likes"
	ServiceTypeFollows  ServiceType = "follows"
	ServiceTypeViews    ServiceType = "views"
	ServiceTypeComments ServiceType = "comments"
	ServiceTypeShares   ServiceType = "shares"
)

var validServiceTypes = []ServiceType{
	ServiceTypeLikes,
	ServiceTypeFollows,
	ServiceTypeViews,
	ServiceTypeComments,
	ServiceTypeShares,
}

// String implements fmt.Stringer.
func (s ServiceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ServiceType.
func (s ServiceType) IsValid() bool {
	for _, candidate := range validServiceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseServiceType converts raw input into a ServiceType.
func ParseServiceType(value string) (ServiceType, error) {
	for _, candidate := range validServiceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service type %q", value)
}
