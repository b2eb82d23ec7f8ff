package enums

import "fmt"

// StockMovementType classifies each ledger entry written against a stock item.
//
// Quantity sign convention: negative values denote stock leaving the sellable
// pool, positive values denote stock entering it. Reserved/unreserved adjust
// the reserved counter, adjustment/purchase/sale/loss adjust the on-hand
// counter, and shipped is recorded for audit only.
type StockMovementType string

const (
	StockMovementTypeAdjustment StockMovementType = "adjustment"
	StockMovementTypePurchase   StockMovementType = "purchase"
	StockMovementTypeSale       StockMovementType = "sale"
	StockMovementTypeLoss       StockMovementType = "loss"
	StockMovementTypeReserved   StockMovementType = "reserved"
	StockMovementTypeUnreserved StockMovementType = "unreserved"
	StockMovementTypeShipped    StockMovementType = "shipped"
)

var validStockMovementTypes = []StockMovementType{
	StockMovementTypeAdjustment,
	StockMovementTypePurchase,
	StockMovementTypeSale,
	StockMovementTypeLoss,
	StockMovementTypeReserved,
	StockMovementTypeUnreserved,
	StockMovementTypeShipped,
}

var manualStockMovementTypes = []StockMovementType{
	StockMovementTypeAdjustment,
	StockMovementTypePurchase,
	StockMovementTypeSale,
	StockMovementTypeLoss,
}

// String implements fmt.Stringer.
func (t StockMovementType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockMovementType.
func (t StockMovementType) IsValid() bool {
	for _, candidate := range validStockMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsManual reports whether the type may be written through a manual adjustment.
// Reservation and shipment types are owned by the order lifecycle.
func (t StockMovementType) IsManual() bool {
	for _, candidate := range manualStockMovementTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockMovementType converts raw input into a StockMovementType.
func ParseStockMovementType(value string) (StockMovementType, error) {
	for _, candidate := range validStockMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock movement type %q", value)
}
