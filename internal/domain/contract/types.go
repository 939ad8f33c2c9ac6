package contract

import "time"

// DateLayout is the wire and display format for contract dates
const DateLayout = "2006-01-02"

// Status represents the lifecycle status of a rental contract
type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusCanceled   Status = "CANCELED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Label returns the display label of the status
func (s Status) Label() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusCanceled:
		return "Canceled"
	case StatusInProgress:
		return "In progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// PaymentMethod represents how a payment is made
type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "PIX"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodCash       PaymentMethod = "CASH"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodCash:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Label returns the display label of the payment method
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodPix:
		return "PIX"
	case PaymentMethodCreditCard:
		return "Credit card"
	case PaymentMethodDebitCard:
		return "Debit card"
	case PaymentMethodCash:
		return "Cash"
	}
	return string(m)
}

// DiscountType is the kind of discount applied to a payment.
// The zero value means no discount.
type DiscountType string

const (
	DiscountTypeNone       DiscountType = ""
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// IsValid checks if the type is a concrete DiscountType
func (t DiscountType) IsValid() bool {
	return t == DiscountTypePercentage || t == DiscountTypeFixed
}

// String returns the string representation of DiscountType
func (t DiscountType) String() string {
	return string(t)
}

// ParseDate parses a YYYY-MM-DD date into a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly drops the time-of-day component, keeping the calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
