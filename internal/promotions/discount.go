package promotions

import (
	"github.com/shopspring/decimal"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// Breakdown is the discount split applied to an order total. Each bucket is a
// non-negative amount subtracted from the total; Final never goes below zero.
type Breakdown struct {
	Email    decimal.Decimal
	Customer decimal.Decimal
	Coupon   decimal.Decimal
	Final    decimal.Decimal
}

// DirectPercents are caller-supplied percentage discounts. Each one lands in
// its named bucket alongside whatever the resolved promotions contribute.
type DirectPercents struct {
	Email    decimal.Decimal
	Customer decimal.Decimal
	Coupon   decimal.Decimal
}

// Compute applies the given promotions and direct percentages to total.
// Percentage discounts are additive against the original total, fixed amounts
// are subtracted after them, and the final amount is clamped at zero when the
// stack overshoots.
func Compute(total decimal.Decimal, promos []models.Promotion, direct DirectPercents) Breakdown {
	breakdown := Breakdown{
		Email:    decimal.Zero,
		Customer: decimal.Zero,
		Coupon:   decimal.Zero,
		Final:    total,
	}

	var percentOff, fixedOff decimal.Decimal
	percentAmount := func(pct decimal.Decimal) decimal.Decimal {
		return total.Mul(pct).Div(oneHundred).Round(2)
	}

	if direct.Email.IsPositive() {
		amount := percentAmount(direct.Email)
		breakdown.Email = breakdown.Email.Add(amount)
		percentOff = percentOff.Add(amount)
	}
	if direct.Customer.IsPositive() {
		amount := percentAmount(direct.Customer)
		breakdown.Customer = breakdown.Customer.Add(amount)
		percentOff = percentOff.Add(amount)
	}
	if direct.Coupon.IsPositive() {
		amount := percentAmount(direct.Coupon)
		breakdown.Coupon = breakdown.Coupon.Add(amount)
		percentOff = percentOff.Add(amount)
	}

	for _, promo := range promos {
		var amount decimal.Decimal
		if promo.IsFixed {
			amount = promo.Discount
			fixedOff = fixedOff.Add(amount)
		} else {
			amount = percentAmount(promo.Discount)
			percentOff = percentOff.Add(amount)
		}

		switch promo.Type {
		case enums.PromotionTypeEmail:
			breakdown.Email = breakdown.Email.Add(amount)
		case enums.PromotionTypeCustomer:
			breakdown.Customer = breakdown.Customer.Add(amount)
		case enums.PromotionTypeCoupon:
			breakdown.Coupon = breakdown.Coupon.Add(amount)
		}
	}

	final := total.Sub(percentOff).Sub(fixedOff)
	if final.IsNegative() {
		final = decimal.Zero
	}
	breakdown.Final = final
	return breakdown
}
