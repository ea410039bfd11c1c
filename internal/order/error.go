package order

import "errors"

var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderCanceled         = errors.New("order has been canceled")
	ErrOrderCompleted        = errors.New("completed order cannot be canceled")
	ErrInvalidDeliveryStatus = errors.New("invalid delivery status")
	ErrForbidden             = errors.New("cannot access others' orders")
	ErrDispatchFailed        = errors.New("failed to send invoice email")
)
