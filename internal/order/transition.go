package order

import "fmt"

// Changes is the partial field set a transition produces. Only non-nil
// fields reach the store; UpdateFields is the single point of mutation.
type Changes struct {
	PaymentStatus  *PaymentStatus
	DeliveryStatus *DeliveryStatus
	Status         *OrderStatus
	ShipperID      *string
}

// ApplyTo merges the change set into an in-memory snapshot. Used to
// hand the caller the post-transition view without a second read.
func (ch Changes) ApplyTo(o *Order) {
	if ch.PaymentStatus != nil {
		o.PaymentStatus = *ch.PaymentStatus
	}
	if ch.DeliveryStatus != nil {
		o.DeliveryStatus = *ch.DeliveryStatus
	}
	if ch.Status != nil {
		o.Status = *ch.Status
	}
	if ch.ShipperID != nil {
		o.ShipperID = ch.ShipperID
	}
}

// aggregate derives the overall status from payment and delivery state.
// An order is completed exactly when it is both paid and shipped.
func aggregate(p PaymentStatus, d DeliveryStatus) OrderStatus {
	if p == PaymentStatusCanceled && d == DeliveryStatusCanceled {
		return StatusCanceled
	}
	if p == PaymentStatusPaid && d == DeliveryStatusShipped {
		return StatusCompleted
	}
	return StatusPending
}

// guardNotCanceled rejects transitions on orders a cancellation has
// already been recorded for.
func guardNotCanceled(o *Order) error {
	if o.Status == StatusCanceled || o.PaymentStatus == PaymentStatusCanceled {
		return ErrOrderCanceled
	}
	return nil
}

// Pay marks the order paid. Completes the order when it has already
// been shipped.
func Pay(o *Order) (Changes, error) {
	if err := guardNotCanceled(o); err != nil {
		return Changes{}, err
	}

	paid := PaymentStatusPaid
	status := aggregate(paid, o.DeliveryStatus)
	return Changes{PaymentStatus: &paid, Status: &status}, nil
}

// SetDeliveryStatus moves the order to the given delivery state.
// Completes the order when it is paid and the new state is shipped.
func SetDeliveryStatus(o *Order, next DeliveryStatus) (Changes, error) {
	if !ValidDeliveryStatus(next) {
		return Changes{}, fmt.Errorf("%w: %q", ErrInvalidDeliveryStatus, next)
	}
	if err := guardNotCanceled(o); err != nil {
		return Changes{}, err
	}

	status := aggregate(o.PaymentStatus, next)
	return Changes{DeliveryStatus: &next, Status: &status}, nil
}

// Cancel voids the order. A completed order is terminal and stays so.
// Payment, delivery and overall status move to canceled together.
func Cancel(o *Order) (Changes, error) {
	if o.Status == StatusCompleted {
		return Changes{}, ErrOrderCompleted
	}

	payment := PaymentStatusCanceled
	delivery := DeliveryStatusCanceled
	status := StatusCanceled
	return Changes{
		PaymentStatus:  &payment,
		DeliveryStatus: &delivery,
		Status:         &status,
	}, nil
}

// AssignShipper hands the order to a shipper account. Unconditional.
func AssignShipper(o *Order, shipperID string) (Changes, error) {
	return Changes{ShipperID: &shipperID}, nil
}
