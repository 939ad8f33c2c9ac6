package contract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rental/backend/internal/domain/shared"
)

// ValidationErrors maps a field key to a human-readable message.
// Keys are header field names, list-level names ("items", "payments",
// "paymentTotal", "form") or indexed keys such as "items[0].quantity".
type ValidationErrors map[string]string

// Add records a message for key, keeping the first message per key
func (e ValidationErrors) Add(key, message string) {
	if _, exists := e[key]; !exists {
		e[key] = message
	}
}

// Has reports whether key carries an error
func (e ValidationErrors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// IsEmpty reports whether there are no errors
func (e ValidationErrors) IsEmpty() bool {
	return len(e) == 0
}

// Keys returns the error keys in sorted order
func (e ValidationErrors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of the errors
func (e ValidationErrors) Clone() ValidationErrors {
	out := make(ValidationErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ItemKey builds the error key of an item field
func ItemKey(index int, field ItemField) string {
	return fmt.Sprintf("items[%d].%s", index, field)
}

// PaymentKey builds the error key of a payment field
func PaymentKey(index int, field PaymentField) string {
	return fmt.Sprintf("payments[%d].%s", index, field)
}

// removeIndex drops the errors of entry removed from list and moves the
// errors of every later entry down by one so they stay attached to the
// same row.
func (e ValidationErrors) removeIndex(list string, removed int) {
	prefix := list + "["
	shifted := make(map[string]string)
	for key, msg := range e {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		end := strings.Index(key, "]")
		if end < 0 {
			continue
		}
		idx, err := strconv.Atoi(key[len(prefix):end])
		if err != nil || idx < removed {
			continue
		}
		delete(e, key)
		if idx > removed {
			shifted[fmt.Sprintf("%s[%d]%s", list, idx-1, key[end+1:])] = msg
		}
	}
	for k, v := range shifted {
		e[k] = v
	}
}

// ValidationFailedError is returned when a draft is submitted with
// invalid steps. Step is the first failing wizard step.
type ValidationFailedError struct {
	Step   Step
	Errors ValidationErrors
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("contract draft is invalid at step %s: %d field error(s)", e.Step, len(e.Errors))
}

// Is allows errors.Is to match the shared validation error
func (e *ValidationFailedError) Is(target error) bool {
	return target == shared.ErrValidation
}
