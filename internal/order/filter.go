package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sportshop-be/internal/user"
	"sportshop-be/internal/utils"
)

// SearchFilter carries every optional predicate a listing query accepts.
// Zero values mean "not set".
type SearchFilter struct {
	Search    string
	Status    OrderStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	ManagerID string
	ShipperID string
}

// ScopeForCaller narrows the filter to the orders the caller may see:
// staff to orders they manage, shippers to orders assigned to them.
// Any other role sees everything the remaining predicates match.
func (f *SearchFilter) ScopeForCaller(ctx context.Context) *SearchFilter {
	callerID, _ := utils.GetUserIDFromContext(ctx)

	switch utils.GetUserRoleFromContext(ctx) {
	case string(user.RoleStaff):
		f.ManagerID = callerID
	case string(user.RoleShipper):
		f.ShipperID = callerID
	}

	return f
}

// predicate is one optional WHERE fragment. The clause numbers its
// placeholders with %[n]d relative to the predicate's own args.
type predicate struct {
	clause string
	args   []any
}

func (f *SearchFilter) predicates() []predicate {
	var ps []predicate

	if f.Search != "" {
		ps = append(ps, predicate{
			clause: " AND (o.code ILIKE $%[1]d OR o.customer_phone ILIKE $%[1]d OR o.customer_full_name ILIKE $%[1]d)",
			args:   []any{"%" + f.Search + "%"},
		})
	}

	if f.Status != "" {
		ps = append(ps, predicate{
			clause: " AND o.status = $%[1]d",
			args:   []any{f.Status},
		})
	}

	if f.DateFrom != nil {
		ps = append(ps, predicate{
			clause: " AND o.created_at >= $%[1]d",
			args:   []any{*f.DateFrom},
		})
	}

	if f.DateTo != nil {
		ps = append(ps, predicate{
			clause: " AND o.created_at <= $%[1]d",
			args:   []any{*f.DateTo},
		})
	}

	if f.ManagerID != "" {
		ps = append(ps, predicate{
			clause: " AND o.manager_id = $%[1]d",
			args:   []any{f.ManagerID},
		})
	}

	if f.ShipperID != "" {
		ps = append(ps, predicate{
			clause: " AND o.shipper_id = $%[1]d",
			args:   []any{f.ShipperID},
		})
	}

	return ps
}

// Build renders the set predicates into a WHERE fragment whose
// placeholders start at argIndex, plus the matching args.
func (f *SearchFilter) Build(argIndex int) (string, []any) {
	var clauses strings.Builder
	var args []any

	for _, p := range f.predicates() {
		positions := make([]any, len(p.args))
		for i := range p.args {
			positions[i] = argIndex + i
		}

		clauses.WriteString(fmt.Sprintf(p.clause, positions...))
		args = append(args, p.args...)
		argIndex += len(p.args)
	}

	return clauses.String(), args
}

type SortField string

const (
	SortFieldCreatedAt  SortField = "createdAt"
	SortFieldUpdatedAt  SortField = "updatedAt"
	SortFieldTotalPrice SortField = "totalPrice"
)

type SortInput struct {
	Field     SortField
	Direction string
}

// OrderBy maps the sort input onto a whitelisted column expression.
// Anything unknown falls back to newest-first.
func (s *SortInput) OrderBy() string {
	orderBy := "o.created_at DESC"
	if s == nil {
		return orderBy
	}

	dir := strings.ToUpper(s.Direction)
	if dir != "ASC" && dir != "DESC" {
		dir = "DESC"
	}

	switch s.Field {
	case SortFieldCreatedAt:
		orderBy = "o.created_at " + dir
	case SortFieldUpdatedAt:
		orderBy = "o.updated_at " + dir
	case SortFieldTotalPrice:
		orderBy = "o.total_price " + dir
	}

	return orderBy
}
