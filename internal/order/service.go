package order

import (
	"context"
	"fmt"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/user"
	"sportshop-be/internal/utils"

	"go.uber.org/zap"
)

// Renderer turns a fully populated order into the invoice artifact.
// It must not touch the network or the database; every reference the
// document needs is resolved before the call.
type Renderer interface {
	Render(o *Order) ([]byte, error)
}

// Dispatcher delivers a rendered invoice to the order's customer.
type Dispatcher interface {
	SendInvoice(ctx context.Context, o *Order, pdf []byte) error
}

type Page struct {
	Data  []*Order
	Total int64
	Page  int32
	Limit int32
}

type Service interface {
	List(ctx context.Context, filter *SearchFilter, sort *SortInput, limit, page int32) (*Page, error)
	All(ctx context.Context, filter *SearchFilter) ([]*Order, error)
	Statistic(ctx context.Context) (*Statistic, error)
	Detail(ctx context.Context, id string) (*Order, error)
	Pay(ctx context.Context, id string) (*Order, error)
	SetDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) (*Order, error)
	Cancel(ctx context.Context, id string) (*Order, error)
	AssignShipper(ctx context.Context, id, shipperID string) (*Order, error)
	Delete(ctx context.Context, id string) (*Order, error)
	Invoice(ctx context.Context, id string) (*Order, []byte, error)
	SendInvoice(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	renderer Renderer
	mailer   Dispatcher
}

func NewService(repo Repository, renderer Renderer, mailer Dispatcher) Service {
	return &service{
		repo:     repo,
		renderer: renderer,
		mailer:   mailer,
	}
}

func (s *service) List(ctx context.Context, filter *SearchFilter, sort *SortInput, limit, page int32) (*Page, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}
	filter.ScopeForCaller(ctx)

	orders, err := s.repo.Search(ctx, filter, sort, limit, page)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	return &Page{Data: orders, Total: total, Page: page, Limit: limit}, nil
}

func (s *service) All(ctx context.Context, filter *SearchFilter) ([]*Order, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}
	filter.ScopeForCaller(ctx)

	return s.repo.All(ctx, filter)
}

func (s *service) Statistic(ctx context.Context) (*Statistic, error) {
	filter := (&SearchFilter{}).ScopeForCaller(ctx)
	return s.repo.CountByStatus(ctx, filter)
}

func (s *service) Detail(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ensureCallerAccess(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

// applyTransition reads the freshest row, validates the transition
// against it and writes the resulting change set in one place.
// Concurrent writers race last-write-wins; there is no version check.
func (s *service) applyTransition(ctx context.Context, id string, apply func(*Order) (Changes, error)) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ensureCallerAccess(ctx, o); err != nil {
		return nil, err
	}

	ch, err := apply(o)
	if err != nil {
		return nil, err
	}

	return s.repo.UpdateFields(ctx, o.ID, ch)
}

func (s *service) Pay(ctx context.Context, id string) (*Order, error) {
	return s.applyTransition(ctx, id, Pay)
}

func (s *service) SetDeliveryStatus(ctx context.Context, id string, status DeliveryStatus) (*Order, error) {
	return s.applyTransition(ctx, id, func(o *Order) (Changes, error) {
		return SetDeliveryStatus(o, status)
	})
}

func (s *service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.applyTransition(ctx, id, Cancel)
}

func (s *service) AssignShipper(ctx context.Context, id, shipperID string) (*Order, error) {
	return s.applyTransition(ctx, id, func(o *Order) (Changes, error) {
		return AssignShipper(o, shipperID)
	})
}

func (s *service) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("order deleted",
		zap.String("order_id", o.ID),
		zap.String("code", o.Code),
	)

	return o, nil
}

func (s *service) Invoice(ctx context.Context, id string) (*Order, []byte, error) {
	o, err := s.Detail(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.renderer.Render(o)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	return o, pdf, nil
}

// SendInvoice renders the invoice to completion before handing the
// bytes to the dispatcher, so a partial artifact can never be mailed.
// Transport errors come back verbatim; there is no retry.
func (s *service) SendInvoice(ctx context.Context, id string) error {
	o, pdf, err := s.Invoice(ctx, id)
	if err != nil {
		return err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("order_id", o.ID),
		zap.String("recipient", o.Customer.Email),
	)

	if err := s.mailer.SendInvoice(ctx, o, pdf); err != nil {
		log.Error("invoice dispatch failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	log.Info("invoice dispatched", zap.Int("attachment_bytes", len(pdf)))
	return nil
}

// ensureCallerAccess applies the same scoping as listings: staff reach
// orders they manage, shippers orders assigned to them.
func ensureCallerAccess(ctx context.Context, o *Order) error {
	callerID, _ := utils.GetUserIDFromContext(ctx)

	switch utils.GetUserRoleFromContext(ctx) {
	case string(user.RoleStaff):
		if o.ManagerID == nil || *o.ManagerID != callerID {
			return ErrForbidden
		}
	case string(user.RoleShipper):
		if o.ShipperID == nil || *o.ShipperID != callerID {
			return ErrForbidden
		}
	}

	return nil
}
