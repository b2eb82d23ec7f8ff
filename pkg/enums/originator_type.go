package enums

import "fmt"

// OriginatorType identifies which kind of actor caused a stock movement or
// status transition.
type OriginatorType string

const (
	OriginatorTypeAdmin    OriginatorType = "admin"
	OriginatorTypeCustomer OriginatorType = "customer"
	OriginatorTypeSystem   OriginatorType = "system"
)

var validOriginatorTypes = []OriginatorType{
	OriginatorTypeAdmin,
	OriginatorTypeCustomer,
	OriginatorTypeSystem,
}

// String implements fmt.Stringer.
func (o OriginatorType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OriginatorType.
func (o OriginatorType) IsValid() bool {
	for _, candidate := range validOriginatorTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOriginatorType converts raw input into an OriginatorType.
func ParseOriginatorType(value string) (OriginatorType, error) {
	for _, candidate := range validOriginatorTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid originator type %q", value)
}
