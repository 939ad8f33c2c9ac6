package contract

// Step is a position in the composition wizard
type Step int

const (
	StepBasicInfo Step = iota
	StepItems
	StepPayments
	StepReview
)

// Steps lists the wizard steps in order
var Steps = []Step{StepBasicInfo, StepItems, StepPayments, StepReview}

const lastStep = StepReview

// String returns the step name
func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic_info"
	case StepItems:
		return "items"
	case StepPayments:
		return "payments"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// IsValid checks if the step exists
func (s Step) IsValid() bool {
	return s >= StepBasicInfo && s <= lastStep
}

// StepValidator is a pure check of one step of a draft
type StepValidator func(d *Draft) ValidationErrors

// Wizard drives a draft through its steps, gating forward navigation on
// the validity of every step being left.
type Wizard struct {
	draft      *Draft
	validators map[Step]StepValidator
	current    Step
}

// NewWizard creates a wizard at the first step. refs and options may be
// nil, in which case reference membership is not checked.
func NewWizard(draft *Draft, refs *ReferenceData, options ProductOptions, policy ReconciliationPolicy) *Wizard {
	reconciliation := NewReconciliationValidator(policy)
	return &Wizard{
		draft: draft,
		validators: map[Step]StepValidator{
			StepBasicInfo: func(d *Draft) ValidationErrors {
				return ValidateBasicInfo(d.header, refs)
			},
			StepItems: func(d *Draft) ValidationErrors {
				return ValidateItems(d.items, options)
			},
			StepPayments: func(d *Draft) ValidationErrors {
				return reconciliation.Validate(d.items, d.payments)
			},
		},
		current: StepBasicInfo,
	}
}

// Draft returns the draft being composed
func (w *Wizard) Draft() *Draft {
	return w.draft
}

// Current returns the current step
func (w *Wizard) Current() Step {
	return w.current
}

// ValidateStep runs the validator of step without touching wizard state
func (w *Wizard) ValidateStep(step Step) ValidationErrors {
	validate, ok := w.validators[step]
	if !ok {
		return make(ValidationErrors)
	}
	return validate(w.draft)
}

// Next validates the current step and advances on success. On failure
// the step's errors are surfaced on the draft and false is returned.
func (w *Wizard) Next() bool {
	errs := w.ValidateStep(w.current)
	w.draft.SetErrors(errs)
	if !errs.IsEmpty() {
		return false
	}
	if w.current < lastStep {
		w.current++
	}
	return true
}

// Previous moves one step back without validation
func (w *Wizard) Previous() {
	if w.current > StepBasicInfo {
		w.current--
	}
}

// GoTo jumps to target. Backward jumps are unconditional; forward jumps
// validate every step on the way and stop at the first failing one.
// Targets outside the step range are clamped.
func (w *Wizard) GoTo(target Step) bool {
	if target < StepBasicInfo {
		target = StepBasicInfo
	}
	if target > lastStep {
		target = lastStep
	}
	if target <= w.current {
		w.current = target
		return true
	}
	for w.current < target {
		if !w.Next() {
			return false
		}
	}
	return true
}

// ValidateAll replays every step validator from the first step and
// returns the first failing step with its errors.
func (w *Wizard) ValidateAll() (Step, ValidationErrors, bool) {
	for _, step := range Steps {
		if errs := w.ValidateStep(step); !errs.IsEmpty() {
			return step, errs, false
		}
	}
	return lastStep, make(ValidationErrors), true
}

// ValidateForSubmit re-validates the whole draft before it is handed to
// persistence. On failure it jumps to the first failing step, surfaces
// its errors and returns a *ValidationFailedError.
func (w *Wizard) ValidateForSubmit() error {
	step, errs, ok := w.ValidateAll()
	w.current = step
	w.draft.SetErrors(errs)
	if !ok {
		return &ValidationFailedError{Step: step, Errors: errs.Clone()}
	}
	return nil
}
