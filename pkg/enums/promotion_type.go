package enums

import "fmt"

// PromotionType distinguishes the discount channels applied at checkout.
type PromotionType string

const (
	PromotionTypeEmail    PromotionType = "email"
	PromotionTypeCoupon   PromotionType = "coupon"
	PromotionTypeCustomer PromotionType = "customer"
)

var validPromotionTypes = []PromotionType{
	PromotionTypeEmail,
	PromotionTypeCoupon,
	PromotionTypeCustomer,
}

// String implements fmt.Stringer.
func (p PromotionType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PromotionType.
func (p PromotionType) IsValid() bool {
	for _, candidate := range validPromotionTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePromotionType converts raw input into a PromotionType.
func ParsePromotionType(value string) (PromotionType, error) {
	for _, candidate := range validPromotionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid promotion type %q", value)
}
