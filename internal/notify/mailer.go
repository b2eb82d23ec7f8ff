package notify

import (
	"context"

	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/db/models"
	"github.com/MoxiumTech/EcoReactAdmin-sub001/pkg/logger"
)

// Mailer delivers customer-facing notifications. Delivery happens after the
// triggering transaction commits and failures never surface to the caller.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order)
}

type logMailer struct {
	log *logger.Logger
}

// NewLogMailer returns a Mailer that records deliveries in the structured
// log. It stands in until a real provider is wired up.
func NewLogMailer(log *logger.Logger) Mailer {
	return &logMailer{log: log}
}

func (m *logMailer) SendOrderConfirmation(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	lctx := m.log.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"store_id":     order.StoreID.String(),
		"final_amount": order.FinalAmount.String(),
	})
	m.log.Info(lctx, "order confirmation queued")
}
