package order

import (
	"context"
	"errors"
	"testing"

	"sportshop-be/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Search(ctx context.Context, filter *SearchFilter, sort *SortInput, limit, page int32) ([]*Order, error) {
	args := m.Called(ctx, filter, sort, limit, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter *SearchFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) All(ctx context.Context, filter *SearchFilter) ([]*Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) CountByStatus(ctx context.Context, filter *SearchFilter) (*Statistic, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Statistic), args.Error(1)
}

func (m *MockRepository) UpdateFields(ctx context.Context, id string, ch Changes) (*Order, error) {
	args := m.Called(ctx, id, ch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id string) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(o *Order) ([]byte, error) {
	args := m.Called(o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendInvoice(ctx context.Context, o *Order, pdf []byte) error {
	args := m.Called(ctx, o, pdf)
	return args.Error(0)
}

func adminCtx() context.Context {
	return utils.SetUserContext(context.Background(), "A1", "admin@shop.test", "ADMIN")
}

func staffCtx(id string) context.Context {
	return utils.SetUserContext(context.Background(), id, id+"@shop.test", "STAFF")
}

func newTestService(repo *MockRepository, renderer *MockRenderer, dispatcher *MockDispatcher) Service {
	return NewService(repo, renderer, dispatcher)
}

// --- Tests ---

func TestService_Pay(t *testing.T) {
	t.Run("WritesPaidChangeSet", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		fresh := pendingOrder()
		repo.On("GetByID", mock.Anything, "o-1").Return(fresh, nil)

		updated := pendingOrder()
		updated.PaymentStatus = PaymentStatusPaid
		repo.On("UpdateFields", mock.Anything, "o-1", mock.MatchedBy(func(ch Changes) bool {
			return ch.PaymentStatus != nil && *ch.PaymentStatus == PaymentStatusPaid &&
				ch.Status != nil && *ch.Status == StatusPending &&
				ch.DeliveryStatus == nil
		})).Return(updated, nil)

		o, err := svc.Pay(adminCtx(), "o-1")
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPaid, o.PaymentStatus)
		repo.AssertExpectations(t)
	})

	t.Run("CanceledOrderNeverWritten", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		fresh := pendingOrder()
		fresh.Status = StatusCanceled
		repo.On("GetByID", mock.Anything, "o-1").Return(fresh, nil)

		_, err := svc.Pay(adminCtx(), "o-1")
		assert.ErrorIs(t, err, ErrOrderCanceled)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		repo.On("GetByID", mock.Anything, "missing").Return(nil, ErrOrderNotFound)

		_, err := svc.Pay(adminCtx(), "missing")
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	t.Run("CompletedOrderRejected", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		fresh := pendingOrder()
		fresh.PaymentStatus = PaymentStatusPaid
		fresh.DeliveryStatus = DeliveryStatusShipped
		fresh.Status = StatusCompleted
		repo.On("GetByID", mock.Anything, "o-1").Return(fresh, nil)

		_, err := svc.Cancel(adminCtx(), "o-1")
		assert.ErrorIs(t, err, ErrOrderCompleted)
		repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CancelsAllThreeStatusesAtomically", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		repo.On("GetByID", mock.Anything, "o-1").Return(pendingOrder(), nil)
		repo.On("UpdateFields", mock.Anything, "o-1", mock.MatchedBy(func(ch Changes) bool {
			return ch.PaymentStatus != nil && *ch.PaymentStatus == PaymentStatusCanceled &&
				ch.DeliveryStatus != nil && *ch.DeliveryStatus == DeliveryStatusCanceled &&
				ch.Status != nil && *ch.Status == StatusCanceled
		})).Return(pendingOrder(), nil)

		_, err := svc.Cancel(adminCtx(), "o-1")
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}

func TestService_Detail_Scoping(t *testing.T) {
	managed := "S1"
	foreign := "S2"

	t.Run("StaffBlockedFromForeignOrder", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		o := pendingOrder()
		o.ManagerID = &foreign
		repo.On("GetByID", mock.Anything, "o-1").Return(o, nil)

		_, err := svc.Detail(staffCtx("S1"), "o-1")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("StaffSeesOwnOrder", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

		o := pendingOrder()
		o.ManagerID = &managed
		repo.On("GetByID", mock.Anything, "o-1").Return(o, nil)

		got, err := svc.Detail(staffCtx("S1"), "o-1")
		require.NoError(t, err)
		assert.Equal(t, o, got)
	})
}

func TestService_List_ScopesFilter(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

	scoped := mock.MatchedBy(func(f *SearchFilter) bool {
		return f.ManagerID == "S1"
	})
	repo.On("Search", mock.Anything, scoped, (*SortInput)(nil), int32(20), int32(1)).
		Return([]*Order{}, nil)
	repo.On("Count", mock.Anything, scoped).Return(int64(0), nil)

	_, err := svc.List(staffCtx("S1"), &SearchFilter{}, nil, 20, 1)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_SendInvoice(t *testing.T) {
	t.Run("MailsExactlyTheRenderedBytes", func(t *testing.T) {
		repo := new(MockRepository)
		renderer := new(MockRenderer)
		dispatcher := new(MockDispatcher)
		svc := newTestService(repo, renderer, dispatcher)

		o := pendingOrder()
		o.Customer.Email = "a@example.com"
		repo.On("GetByID", mock.Anything, "o-1").Return(o, nil)

		pdf := []byte("%PDF-1.3 rendered artifact %%EOF")
		renderer.On("Render", o).Return(pdf, nil)

		var mailed []byte
		dispatcher.On("SendInvoice", mock.Anything, o, mock.Anything).
			Run(func(args mock.Arguments) {
				mailed = args.Get(2).([]byte)
			}).
			Return(nil)

		err := svc.SendInvoice(adminCtx(), "o-1")
		require.NoError(t, err)
		assert.Equal(t, pdf, mailed)
		assert.Len(t, mailed, len(pdf))
	})

	t.Run("TransportErrorReturnedVerbatimWithoutRetry", func(t *testing.T) {
		repo := new(MockRepository)
		renderer := new(MockRenderer)
		dispatcher := new(MockDispatcher)
		svc := newTestService(repo, renderer, dispatcher)

		o := pendingOrder()
		repo.On("GetByID", mock.Anything, "o-1").Return(o, nil)
		renderer.On("Render", o).Return([]byte("pdf"), nil)

		relayErr := errors.New("smtp 554: relay access denied")
		dispatcher.On("SendInvoice", mock.Anything, o, mock.Anything).Return(relayErr).Once()

		err := svc.SendInvoice(adminCtx(), "o-1")
		assert.ErrorIs(t, err, ErrDispatchFailed)
		assert.Contains(t, err.Error(), "relay access denied")
		dispatcher.AssertNumberOfCalls(t, "SendInvoice", 1)
	})

	t.Run("RenderFailureNeverDispatches", func(t *testing.T) {
		repo := new(MockRepository)
		renderer := new(MockRenderer)
		dispatcher := new(MockDispatcher)
		svc := newTestService(repo, renderer, dispatcher)

		o := pendingOrder()
		repo.On("GetByID", mock.Anything, "o-1").Return(o, nil)
		renderer.On("Render", o).Return(nil, errors.New("font missing"))

		err := svc.SendInvoice(adminCtx(), "o-1")
		assert.Error(t, err)
		dispatcher.AssertNotCalled(t, "SendInvoice", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Statistic(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockRenderer), new(MockDispatcher))

	want := &Statistic{Total: 10, TotalCanceled: 2, TotalCompleted: 5}
	repo.On("CountByStatus", mock.Anything, mock.MatchedBy(func(f *SearchFilter) bool {
		return f.ShipperID == "SH1"
	})).Return(want, nil)

	ctx := utils.SetUserContext(context.Background(), "SH1", "sh1@shop.test", "SHIPPER")
	got, err := svc.Statistic(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
