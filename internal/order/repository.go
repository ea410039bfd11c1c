package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/user"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	Search(ctx context.Context, filter *SearchFilter, sort *SortInput, limit, page int32) ([]*Order, error)
	Count(ctx context.Context, filter *SearchFilter) (int64, error)
	All(ctx context.Context, filter *SearchFilter) ([]*Order, error)
	CountByStatus(ctx context.Context, filter *SearchFilter) (*Statistic, error)
	UpdateFields(ctx context.Context, id string, ch Changes) (*Order, error)
	Delete(ctx context.Context, id string) (*Order, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const baseSelect = `
		SELECT
			o.id, o.code,
			o.customer_full_name, o.customer_phone, o.customer_address, o.customer_email,
			o.payment_method, o.payment_status, o.delivery_status, o.status,
			o.manager_id, o.shipper_id,
			o.total_price, o.created_at, o.updated_at
		FROM orders o
	`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	var managerID, shipperID sql.NullString

	err := row.Scan(
		&o.ID, &o.Code,
		&o.Customer.FullName, &o.Customer.Phone, &o.Customer.Address, &o.Customer.Email,
		&o.PaymentMethod, &o.PaymentStatus, &o.DeliveryStatus, &o.Status,
		&managerID, &shipperID,
		&o.TotalPrice, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if managerID.Valid {
		o.ManagerID = &managerID.String
	}
	if shipperID.Valid {
		o.ShipperID = &shipperID.String
	}

	return &o, nil
}

// GetByID loads the order with its line items and the manager/shipper
// accounts resolved. The stored total is replaced by the recomputed one
// so downstream consumers never see a stale aggregate.
func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	query := baseSelect + ` WHERE o.id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.populateStaff(ctx, o); err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	o.TotalPrice = o.ComputedTotal()

	return o, nil
}

func (r *repository) populateStaff(ctx context.Context, o *Order) error {
	for _, ref := range []struct {
		id   *string
		dest **user.User
	}{
		{o.ManagerID, &o.Manager},
		{o.ShipperID, &o.Shipper},
	} {
		if ref.id == nil {
			continue
		}

		var u user.User
		err := r.db.QueryRowContext(ctx, `
			SELECT id, full_name, email, phone, role
			FROM users
			WHERE id = $1
		`, *ref.id).Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Role)
		if errors.Is(err, sql.ErrNoRows) {
			// dangling weak reference, leave unresolved
			continue
		}
		if err != nil {
			return err
		}

		*ref.dest = &u
	}

	return nil
}

// loadItems fetches line items for a batch of orders with product and
// variant names resolved, keyed by order id.
func (r *repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]*OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[string][]*OrderItem{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, oi.variant_id, p.name, v.name, oi.quantity, oi.unit_price
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		LEFT JOIN variants v ON v.id = oi.variant_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.id ASC
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]*OrderItem)
	for rows.Next() {
		var item OrderItem
		var productName, variantName sql.NullString

		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.VariantID,
			&productName, &variantName, &item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, err
		}

		item.ProductName = productName.String
		item.VariantName = variantName.String
		item.Subtotal = int64(item.Quantity) * item.UnitPrice
		items[item.OrderID] = append(items[item.OrderID], &item)
	}

	return items, rows.Err()
}

func (r *repository) Search(ctx context.Context, filter *SearchFilter, sort *SortInput, limit, page int32) ([]*Order, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}

	finalLimit := int32(20)
	finalPage := int32(1)

	if limit > 0 {
		finalLimit = limit
	}
	if page > 0 {
		finalPage = page
	}
	if finalLimit > 100 {
		finalLimit = 100
	}

	offset := (finalPage - 1) * finalLimit

	log := logger.FromCtx(ctx).With(
		zap.String("method", "Search"),
		zap.Int32("limit", finalLimit),
		zap.Int32("page", finalPage),
	)

	query := baseSelect + ` WHERE 1=1`

	where, args := filter.Build(1)
	query += where

	query += " ORDER BY " + sort.OrderBy()

	argIndex := len(args) + 1
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, finalLimit, offset)

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		log.Error("failed to load order items", zap.Error(err))
		return nil, err
	}

	log.Debug("orders fetched", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) All(ctx context.Context, filter *SearchFilter) ([]*Order, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}

	query := baseSelect + ` WHERE 1=1`
	where, args := filter.Build(1)
	query += where
	query += " ORDER BY o.created_at DESC"

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *repository) queryOrders(ctx context.Context, query string, args ...any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

func (r *repository) attachItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
		o.TotalPrice = o.ComputedTotal()
	}

	return nil
}

func (r *repository) Count(ctx context.Context, filter *SearchFilter) (int64, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}

	query := `SELECT COUNT(*) FROM orders o WHERE 1=1`
	where, args := filter.Build(1)
	query += where

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}

	return total, nil
}

func (r *repository) CountByStatus(ctx context.Context, filter *SearchFilter) (*Statistic, error) {
	if filter == nil {
		filter = &SearchFilter{}
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE o.status = 'CANCELED'),
			COUNT(*) FILTER (WHERE o.status = 'COMPLETED')
		FROM orders o
		WHERE 1=1`
	where, args := filter.Build(1)
	query += where

	var stat Statistic
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&stat.Total, &stat.TotalCanceled, &stat.TotalCompleted)
	if err != nil {
		return nil, err
	}

	return &stat, nil
}

// UpdateFields writes the change set and returns the freshly populated
// order. Untouched fields keep their stored values.
func (r *repository) UpdateFields(ctx context.Context, id string, ch Changes) (*Order, error) {
	sets := []string{}
	args := []any{}
	argIndex := 1

	appendSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if ch.PaymentStatus != nil {
		appendSet("payment_status", *ch.PaymentStatus)
	}
	if ch.DeliveryStatus != nil {
		appendSet("delivery_status", *ch.DeliveryStatus)
	}
	if ch.Status != nil {
		appendSet("status", *ch.Status)
	}
	if ch.ShipperID != nil {
		appendSet("shipper_id", *ch.ShipperID)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), argIndex)
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrOrderNotFound
	}

	return r.GetByID(ctx, id)
}

// Delete removes the order permanently and returns its last state.
func (r *repository) Delete(ctx context.Context, id string) (*Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrOrderNotFound
	}

	return o, nil
}
