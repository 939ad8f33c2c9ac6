package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	ModeCreate = "create"
	ModeEdit   = "edit"

	saveFailedMessage = "Failed to save the contract. Check the data and try again."
)

// SessionMetrics records composition session activity
type SessionMetrics interface {
	SessionStarted(ctx context.Context, mode string)
	ValidationFailed(ctx context.Context, step contract.Step)
	ContractSubmitted(ctx context.Context, mode string, total decimal.Decimal)
	SubmitFailed(ctx context.Context, mode string)
}

type nopMetrics struct{}

func (nopMetrics) SessionStarted(context.Context, string)                     {}
func (nopMetrics) ValidationFailed(context.Context, contract.Step)            {}
func (nopMetrics) ContractSubmitted(context.Context, string, decimal.Decimal) {}
func (nopMetrics) SubmitFailed(context.Context, string)                       {}

// SessionConfig holds the policies applied to new sessions
type SessionConfig struct {
	RentalDays int
	Policy     contract.ReconciliationPolicy
}

// SessionService starts composition sessions and submits their drafts
type SessionService struct {
	directory contract.ReferenceDirectory
	reader    contract.ContractReader
	writer    ContractWriter
	assembler *Assembler
	config    SessionConfig
	metrics   SessionMetrics
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(
	directory contract.ReferenceDirectory,
	reader contract.ContractReader,
	writer ContractWriter,
	config SessionConfig,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.RentalDays <= 0 {
		config.RentalDays = contract.DefaultRentalDays
	}
	if config.Policy.UpperRatio.IsZero() {
		config.Policy = contract.DefaultReconciliationPolicy()
	}
	return &SessionService{
		directory: directory,
		reader:    reader,
		writer:    writer,
		assembler: NewAssembler(),
		config:    config,
		metrics:   nopMetrics{},
		logger:    logger,
		tracer:    otel.Tracer("github.com/rental/backend/internal/application/contract"),
		now:       time.Now,
	}
}

// SetMetrics sets the metrics recorder
func (s *SessionService) SetMetrics(metrics SessionMetrics) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// SetClock overrides the clock used for draft defaults
func (s *SessionService) SetClock(now func() time.Time) {
	s.now = now
}

// Start loads the reference directories in parallel and opens a session.
// With a contractID the draft is hydrated from the stored contract.
func (s *SessionService) Start(ctx context.Context, contractID *uuid.UUID) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "contract.session.start")
	defer span.End()

	refs := &contract.ReferenceData{}
	var existing *contract.Contract

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clients, err := s.directory.ListClients(gctx)
		if err != nil {
			return fmt.Errorf("load clients: %w", err)
		}
		refs.Clients = clients
		return nil
	})
	g.Go(func() error {
		products, err := s.directory.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		refs.Products = products
		return nil
	})
	g.Go(func() error {
		events, err := s.directory.ListEvents(gctx)
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		refs.Events = events
		return nil
	})
	g.Go(func() error {
		locations, err := s.directory.ListLocations(gctx)
		if err != nil {
			return fmt.Errorf("load locations: %w", err)
		}
		refs.Locations = locations
		return nil
	})
	if contractID != nil {
		g.Go(func() error {
			c, err := s.reader.FindByID(gctx, *contractID)
			if err != nil {
				return fmt.Errorf("load contract %s: %w", *contractID, err)
			}
			existing = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reference data load failed")
		s.logger.Error("Failed to load contract composition data", zap.Error(err))
		return nil, err
	}

	sess := &Session{
		id:        uuid.New(),
		refs:      refs,
		service:   s,
		startedAt: s.now(),
	}
	if existing != nil {
		sess.options = refs.ProductOptions(existing.ProductIDs())
		sess.draft = contract.HydrateDraft(existing, sess.options)
	} else {
		sess.options = refs.ProductOptions(nil)
		sess.draft = contract.NewDraft(s.now(), s.config.RentalDays, sess.options)
	}
	sess.wizard = contract.NewWizard(sess.draft, refs, sess.options, s.config.Policy)

	span.SetAttributes(
		attribute.String("contract.session_id", sess.id.String()),
		attribute.String("contract.mode", sess.Mode()),
	)
	s.metrics.SessionStarted(ctx, sess.Mode())
	s.logger.Info("Contract composition session started",
		zap.String("session_id", sess.id.String()),
		zap.String("mode", sess.Mode()),
		zap.Int("products_offered", len(sess.options)),
	)
	return sess, nil
}

// Session is one user's composition of a single contract. It owns its
// draft exclusively and is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	refs      *contract.ReferenceData
	options   contract.ProductOptions
	draft     *contract.Draft
	wizard    *contract.Wizard
	service   *SessionService
	startedAt time.Time
}

// ID returns the session ID
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Mode returns ModeEdit when editing a stored contract, ModeCreate otherwise
func (s *Session) Mode() string {
	if s.draft.IsEdit() {
		return ModeEdit
	}
	return ModeCreate
}

// Draft returns the draft being composed
func (s *Session) Draft() *contract.Draft {
	return s.draft
}

// Wizard returns the step controller
func (s *Session) Wizard() *contract.Wizard {
	return s.wizard
}

// References returns the loaded reference directories
func (s *Session) References() *contract.ReferenceData {
	return s.refs
}

// ProductOptions returns the products that may be added to the draft
func (s *Session) ProductOptions() contract.ProductOptions {
	return s.options
}

// StartedAt returns when the session was opened
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Next advances the wizard, recording failed step validations
func (s *Session) Next(ctx context.Context) bool {
	step := s.wizard.Current()
	if s.wizard.Next() {
		return true
	}
	s.service.metrics.ValidationFailed(ctx, step)
	return false
}

// GoTo jumps the wizard to step, recording failed step validations
func (s *Session) GoTo(ctx context.Context, step contract.Step) bool {
	if s.wizard.GoTo(step) {
		return true
	}
	s.service.metrics.ValidationFailed(ctx, s.wizard.Current())
	return false
}

// Review returns the summary shown at the review step
func (s *Session) Review() contract.ReviewSummary {
	return contract.Review(s.draft, s.refs)
}

// Submit re-validates every step and hands the assembled payload to the
// contract store. Validation failures return *contract.ValidationFailedError
// with the wizard moved to the first failing step. Store failures leave the
// draft intact with a form-level error so the user can retry.
func (s *Session) Submit(ctx context.Context) (*contract.Contract, error) {
	svc := s.service
	ctx, span := svc.tracer.Start(ctx, "contract.session.submit",
		trace.WithAttributes(
			attribute.String("contract.session_id", s.id.String()),
			attribute.String("contract.mode", s.Mode()),
		),
	)
	defer span.End()

	saved, err := s.persist(ctx)
	if err != nil {
		var failed *contract.ValidationFailedError
		if errors.As(err, &failed) {
			span.SetAttributes(attribute.String("contract.failed_step", failed.Step.String()))
			svc.metrics.ValidationFailed(ctx, failed.Step)
			svc.logger.Info("Contract submission blocked by validation",
				zap.String("session_id", s.id.String()),
				zap.String("step", failed.Step.String()),
				zap.Strings("fields", failed.Errors.Keys()),
			)
			return nil, err
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "contract store rejected submission")
		s.draft.SetFormError(saveFailedMessage)
		svc.metrics.SubmitFailed(ctx, s.Mode())
		svc.logger.Error("Failed to save contract",
			zap.String("session_id", s.id.String()),
			zap.String("mode", s.Mode()),
			zap.Error(err),
		)
		return nil, err
	}

	svc.metrics.ContractSubmitted(ctx, s.Mode(), saved.Total())
	svc.logger.Info("Contract saved",
		zap.String("session_id", s.id.String()),
		zap.String("contract_id", saved.ID.String()),
		zap.String("mode", s.Mode()),
		zap.String("total", saved.Total().StringFixed(2)),
	)
	return saved, nil
}

func (s *Session) persist(ctx context.Context) (*contract.Contract, error) {
	svc := s.service
	if id, ok := s.draft.ContractID(); ok {
		req, err := svc.assembler.AssembleUpdate(s.wizard)
		if err != nil {
			return nil, err
		}
		saved, err := svc.writer.UpdateContract(ctx, id, req)
		if err != nil {
			return nil, fmt.Errorf("update contract %s: %w", id, err)
		}
		return saved, nil
	}

	req, err := svc.assembler.AssembleCreate(s.wizard)
	if err != nil {
		return nil, err
	}
	saved, err := svc.writer.CreateContract(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	return saved, nil
}

// Snapshot renders the full session state
func (s *Session) Snapshot() SessionResponse {
	h := s.draft.Header()
	resp := SessionResponse{
		ID:            s.id,
		Mode:          s.Mode(),
		Step:          int(s.wizard.Current()),
		StepName:      s.wizard.Current().String(),
		Items:         make([]ItemResponse, 0, s.draft.Items().Len()),
		Payments:      make([]PaymentResponse, 0, s.draft.Payments().Len()),
		ItemsTotal:    s.draft.Items().Total(),
		PaymentsTotal: s.draft.Payments().Total(),
		Errors:        s.draft.Errors(),
		Header: HeaderResponse{
			ClientID:        nonNilID(h.ClientID),
			EventID:         h.EventID,
			LocationID:      h.LocationID,
			Status:          h.Status.String(),
			StatusLabel:     h.Status.Label(),
			NeedsAdjustment: h.NeedsAdjustment,
			Observations:    h.Observations,
		},
	}
	if id, ok := s.draft.ContractID(); ok {
		resp.ContractID = &id
	}
	if !h.PickupDate.IsZero() {
		resp.Header.PickupDate = contract.FormatDate(h.PickupDate)
	}
	if !h.ReturnDate.IsZero() {
		resp.Header.ReturnDate = contract.FormatDate(h.ReturnDate)
	}
	if h.FittingDate != nil {
		resp.Header.FittingDate = contract.FormatDate(*h.FittingDate)
	}

	for i, item := range s.draft.Items().Items() {
		resp.Items = append(resp.Items, ItemResponse{
			Index:     i,
			ProductID: nonNilID(item.ProductID),
			Quantity:  item.Quantity,
			UnitValue: item.UnitValue,
			Subtotal:  item.Subtotal(),
		})
	}
	for i, p := range s.draft.Payments().Payments() {
		pr := PaymentResponse{
			Index:         i,
			Method:        p.Method.String(),
			MethodLabel:   p.Method.Label(),
			TotalValue:    p.TotalValue,
			DiscountValue: p.DiscountValue,
			FinalValue:    p.FinalValue,
			Notes:         p.Notes,
		}
		if p.DiscountType != contract.DiscountTypeNone {
			dt := p.DiscountType.String()
			pr.DiscountType = &dt
		}
		resp.Payments = append(resp.Payments, pr)
	}
	return resp
}

func nonNilID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

// IsNotFound reports whether err means a referenced record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
