package dto

import (
	"fmt"
	"strconv"

	appcontract "github.com/rental/backend/internal/application/contract"
)

// StartDraftRequest opens a composition session. ContractID switches the
// session to edit mode.
type StartDraftRequest struct {
	ContractID *string `json:"contractId" binding:"omitempty,uuid"`
}

// FieldPatchRequest sets one field of an item or payment row
type FieldPatchRequest struct {
	Field string `json:"field" binding:"required"`
	Value any    `json:"value"`
}

// NavigationResponse is returned by step navigation. Moved is false when a
// step failed validation; its errors are part of the session state.
type NavigationResponse struct {
	Moved   bool                        `json:"moved"`
	Session appcontract.SessionResponse `json:"session"`
}

// RowResponse is returned when a row is added
type RowResponse struct {
	Index   int                         `json:"index"`
	Session appcontract.SessionResponse `json:"session"`
}

// FormValue renders a JSON scalar as the textual form value the draft
// parsers accept. null clears the field.
func FormValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}
