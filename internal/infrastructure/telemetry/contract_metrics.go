package telemetry

import (
	"context"
	"errors"

	"github.com/rental/backend/internal/domain/contract"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics recorder is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ContractMetrics records contract composition activity: sessions started,
// wizard validation failures, submissions and their totals.
type ContractMetrics struct {
	sessionsStarted    *Counter
	validationFailures *Counter
	contractsSubmitted *Counter
	submitFailures     *Counter
	contractValue      *Histogram
}

// NewContractMetrics registers the contract instruments on meter.
func NewContractMetrics(meter metric.Meter) (*ContractMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		cm  ContractMetrics
		err error
	)
	if cm.sessionsStarted, err = NewCounter(meter,
		"rental_contract_sessions_started_total",
		"Number of contract composition sessions started",
		"{sessions}",
	); err != nil {
		return nil, err
	}
	if cm.validationFailures, err = NewCounter(meter,
		"rental_contract_validation_failures_total",
		"Number of wizard step validations that failed",
		"{failures}",
	); err != nil {
		return nil, err
	}
	if cm.contractsSubmitted, err = NewCounter(meter,
		"rental_contracts_submitted_total",
		"Number of contracts accepted by the contract store",
		"{contracts}",
	); err != nil {
		return nil, err
	}
	if cm.submitFailures, err = NewCounter(meter,
		"rental_contract_submit_failures_total",
		"Number of submissions rejected by the contract store",
		"{failures}",
	); err != nil {
		return nil, err
	}
	if cm.contractValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "rental_contract_value",
		Description: "Total value of submitted contracts",
		Unit:        "{BRL}",
		Boundaries:  ContractValueBuckets,
	}); err != nil {
		return nil, err
	}

	return &cm, nil
}

// SessionStarted counts a new composition session.
func (m *ContractMetrics) SessionStarted(ctx context.Context, mode string) {
	m.sessionsStarted.Inc(ctx, AttrSessionMode.String(mode))
}

// ValidationFailed counts a step that did not validate.
func (m *ContractMetrics) ValidationFailed(ctx context.Context, step contract.Step) {
	m.validationFailures.Inc(ctx, AttrWizardStep.String(step.String()))
}

// ContractSubmitted counts an accepted submission and records its total.
func (m *ContractMetrics) ContractSubmitted(ctx context.Context, mode string, total decimal.Decimal) {
	m.contractsSubmitted.Inc(ctx, AttrSessionMode.String(mode))
	m.contractValue.Record(ctx, total.InexactFloat64(), AttrSessionMode.String(mode))
}

// SubmitFailed counts a submission the store rejected.
func (m *ContractMetrics) SubmitFailed(ctx context.Context, mode string) {
	m.submitFailures.Inc(ctx, AttrSessionMode.String(mode))
}
