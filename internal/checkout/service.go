package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tokopos/terminal-api/internal/cart"
	"github.com/tokopos/terminal-api/internal/catalog"
	"github.com/tokopos/terminal-api/internal/pricing"
	"github.com/tokopos/terminal-api/internal/settlement"
	"github.com/tokopos/terminal-api/pkg/enums"
	pkgerrors "github.com/tokopos/terminal-api/pkg/errors"
	"github.com/tokopos/terminal-api/pkg/metrics"
	"github.com/tokopos/terminal-api/pkg/upstream"
)

type catalogProvider interface {
	Snapshot(ctx context.Context, token string) (*catalog.Snapshot, error)
}

type orderSubmitter interface {
	SubmitOrder(ctx context.Context, token string, req upstream.OrderRequest) (*upstream.OrderResult, error)
}

// SubmitInput captures everything the cashier confirms at checkout.
type SubmitInput struct {
	CustomerName    string
	TokoID          int64
	PaymentMethodID int64
	PaymentKind     enums.PaymentKind
	CashTendered    string
}

// Result is the single-consumption submission outcome. It is returned directly
// from Submit; no success flag survives the call, so side effects cannot
// re-fire on a stale observation.
type Result struct {
	Order      *upstream.OrderResult  `json:"order"`
	Quote      pricing.Quote          `json:"quote"`
	Settlement *settlement.Settlement `json:"settlement,omitempty"`
}

// Service turns a cart snapshot into a submitted order and reconciles local
// state with the outcome: the cart is cleared exactly once on confirmation and
// left intact on any failure so the cashier can retry.
type Service interface {
	Submit(ctx context.Context, sessionID, token string, input SubmitInput) (*Result, error)
}

type service struct {
	store    *cart.Store
	catalog  catalogProvider
	upstream orderSubmitter
	metrics  *metrics.CheckoutMetrics

	mu         sync.Mutex
	submitting map[string]struct{}
}

// NewService builds the checkout service.
func NewService(store *cart.Store, catalogSvc catalogProvider, submitter orderSubmitter, m *metrics.CheckoutMetrics) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog provider required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("order submitter required")
	}
	return &service{
		store:      store,
		catalog:    catalogSvc,
		upstream:   submitter,
		metrics:    m,
		submitting: map[string]struct{}{},
	}, nil
}

func (s *service) Submit(ctx context.Context, sessionID, token string, input SubmitInput) (*Result, error) {
	if err := s.beginSubmit(sessionID); err != nil {
		s.metrics.IncFailure("concurrent_submit")
		return nil, err
	}
	defer s.endSubmit(sessionID)

	result, err := s.submit(ctx, sessionID, token, input)
	if err != nil {
		s.metrics.IncFailure(failureReason(err))
		return nil, err
	}
	s.metrics.IncSuccess(string(input.PaymentKind))
	return result, nil
}

func (s *service) submit(ctx context.Context, sessionID, token string, input SubmitInput) (*Result, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.TokoID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "toko id is required")
	}
	if input.PaymentMethodID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}
	if !input.PaymentKind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment kind")
	}

	// Empty-cart rejection happens before the catalog is even consulted so a
	// caller error never costs a network round trip.
	snapshot := s.store.Snapshot(sessionID)
	if len(snapshot) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	catalogSnapshot, err := s.catalog.Snapshot(ctx, token)
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(snapshot, catalogSnapshot)
	if len(quote.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart line resolves in the catalog").
			WithDetails(map[string]any{"warnings": quote.Warnings})
	}

	var settled *settlement.Settlement
	if input.PaymentKind.RequiresTender() {
		outcome := settlement.Settle(quote.GrandTotal, input.CashTendered)
		if !outcome.Sufficient {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tendered cash does not cover the total").
				WithDetails(map[string]any{
					"grand_total": quote.GrandTotal,
					"tendered":    outcome.Tendered,
					"shortfall":   -outcome.Change,
				})
		}
		settled = &outcome
	}

	started := time.Now()
	order, err := s.upstream.SubmitOrder(ctx, token, buildOrderRequest(input, quote))
	s.metrics.ObserveDuration(string(input.PaymentKind), time.Since(started))
	if err != nil {
		// Cart stays intact; the cashier retries with the same lines. A lost
		// response after upstream acceptance can still duplicate the order,
		// which only an upstream idempotency contract could close.
		return nil, err
	}

	s.store.Clear(sessionID)

	return &Result{Order: order, Quote: quote, Settlement: settled}, nil
}

// buildOrderRequest assembles the immutable submission payload from resolved
// quote lines, omitting stale entries the same way totals do.
func buildOrderRequest(input SubmitInput, quote pricing.Quote) upstream.OrderRequest {
	items := make([]upstream.OrderItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, upstream.OrderItem{
			ProductID: line.ProductID,
			Amount:    line.Quantity,
		})
	}
	return upstream.OrderRequest{
		CustomerName:    strings.TrimSpace(input.CustomerName),
		PaymentMethodID: input.PaymentMethodID,
		TokoID:          input.TokoID,
		Items:           items,
	}
}

// beginSubmit gates concurrent submissions per session. A second confirm while
// one is in flight gets a state conflict instead of a duplicate order.
func (s *service) beginSubmit(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.submitting[sessionID]; busy {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a submission is already in progress")
	}
	s.submitting[sessionID] = struct{}{}
	return nil
}

func (s *service) endSubmit(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.submitting, sessionID)
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return "internal"
}
