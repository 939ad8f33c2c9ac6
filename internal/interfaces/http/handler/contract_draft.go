package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcontract "github.com/rental/backend/internal/application/contract"
	"github.com/rental/backend/internal/domain/contract"
	"github.com/rental/backend/internal/domain/shared"
	"github.com/rental/backend/internal/infrastructure/logger"
	"github.com/rental/backend/internal/interfaces/http/dto"
	"github.com/rental/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// headerFieldOrder is the order header patches are applied in
var headerFieldOrder = []contract.HeaderField{
	contract.HeaderFieldClientID,
	contract.HeaderFieldEventID,
	contract.HeaderFieldLocationID,
	contract.HeaderFieldStatus,
	contract.HeaderFieldFittingDate,
	contract.HeaderFieldPickupDate,
	contract.HeaderFieldReturnDate,
	contract.HeaderFieldNeedsAdjustment,
	contract.HeaderFieldObservations,
}

// ProductCacheInvalidator drops cached product listings
type ProductCacheInvalidator interface {
	InvalidateProducts(ctx context.Context) error
}

// ContractDraftHandler serves the contract composition sessions
type ContractDraftHandler struct {
	BaseHandler
	service     *appcontract.SessionService
	store       *appcontract.SessionStore
	invalidator ProductCacheInvalidator
}

// NewContractDraftHandler creates a new ContractDraftHandler
func NewContractDraftHandler(service *appcontract.SessionService, store *appcontract.SessionStore) *ContractDraftHandler {
	return &ContractDraftHandler{service: service, store: store}
}

// SetProductCacheInvalidator sets the cache refreshed after each saved
// contract, since saving changes which products are attached
func (h *ContractDraftHandler) SetProductCacheInvalidator(inv ProductCacheInvalidator) {
	h.invalidator = inv
}

// RegisterRoutes registers the draft routes under rg
func (h *ContractDraftHandler) RegisterRoutes(rg *gin.RouterGroup) {
	drafts := rg.Group("/contract-drafts")
	drafts.POST("", h.Start)

	draft := drafts.Group("/:" + middleware.DraftIDParam)
	draft.GET("", h.Get)
	draft.DELETE("", h.Cancel)
	draft.PATCH("/header", h.PatchHeader)

	draft.POST("/items", h.AddItem)
	draft.PATCH("/items/:index", h.PatchItem)
	draft.DELETE("/items/:index", h.DeleteItem)

	draft.POST("/payments", h.AddPayment)
	draft.PATCH("/payments/:index", h.PatchPayment)
	draft.DELETE("/payments/:index", h.DeletePayment)

	draft.POST("/next", h.Next)
	draft.POST("/previous", h.Previous)
	draft.POST("/goto/:step", h.GoTo)

	draft.GET("/review", h.Review)
	draft.POST("/submit", h.Submit)
}

// Start opens a composition session, in edit mode when contractId is given
func (h *ContractDraftHandler) Start(c *gin.Context) {
	var req dto.StartDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	var contractID *uuid.UUID
	if req.ContractID != nil {
		id := uuid.MustParse(*req.ContractID)
		contractID = &id
	}

	sess, err := h.service.Start(c.Request.Context(), contractID)
	if err != nil {
		if appcontract.IsNotFound(err) {
			h.NotFound(c, "Contract not found")
			return
		}
		logger.GetGinLogger(c).Warn("Failed to start contract draft", zap.Error(err))
		h.BadGateway(c, "Failed to load contract data")
		return
	}

	h.store.Put(sess)
	h.Created(c, sess.Snapshot())
}

// Get returns the session state
func (h *ContractDraftHandler) Get(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		return sess.Snapshot(), nil
	})
}

// Cancel discards the session
func (h *ContractDraftHandler) Cancel(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	if !h.store.Delete(id) {
		h.HandleError(c, appcontract.ErrSessionNotFound)
		return
	}
	h.NoContent(c)
}

// PatchHeader sets header fields from a JSON object of field -> value.
// Every valid field is applied; the failing ones are reported together.
func (h *ContractDraftHandler) PatchHeader(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	if len(fields) == 0 {
		h.BadRequest(c, "No header fields given")
		return
	}
	known := make(map[string]bool, len(headerFieldOrder))
	for _, f := range headerFieldOrder {
		known[string(f)] = true
	}
	for name := range fields {
		if !known[name] {
			h.BadRequest(c, fmt.Sprintf("Unknown header field %q", name))
			return
		}
	}

	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		var failed []dto.ValidationDetail
		for _, field := range headerFieldOrder {
			v, ok := fields[string(field)]
			if !ok {
				continue
			}
			if err := setField(v, func(raw string) error { return sess.Draft().SetHeader(field, raw) }); err != nil {
				failed = append(failed, dto.ValidationDetail{Field: string(field), Message: err.Error()})
			}
		}
		if len(failed) > 0 {
			resp := dto.NewValidationErrorResponse("Some header fields were rejected", middleware.GetRequestID(c), failed)
			resp.Error.Code = dto.ErrCodeInvalidInput
			resp.Data = sess.Snapshot()
			return nil, &rejectedFields{resp: resp}
		}
		return sess.Snapshot(), nil
	})
}

// AddItem appends a blank item
func (h *ContractDraftHandler) AddItem(c *gin.Context) {
	h.respond(c, http.StatusCreated, func(sess *appcontract.Session) (any, error) {
		index := sess.Draft().AddItem()
		return dto.RowResponse{Index: index, Session: sess.Snapshot()}, nil
	})
}

// PatchItem sets one field of an item
func (h *ContractDraftHandler) PatchItem(c *gin.Context) {
	var req dto.FieldPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		index, err := rowIndex(c, "item", sess.Draft().Items().Len())
		if err != nil {
			return nil, err
		}
		err = setField(req.Value, func(raw string) error {
			return sess.Draft().SetItem(index, contract.ItemField(req.Field), raw)
		})
		if err != nil {
			return nil, err
		}
		return sess.Snapshot(), nil
	})
}

// DeleteItem removes an item
func (h *ContractDraftHandler) DeleteItem(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		index, err := rowIndex(c, "item", sess.Draft().Items().Len())
		if err != nil {
			return nil, err
		}
		sess.Draft().RemoveItem(index)
		return sess.Snapshot(), nil
	})
}

// AddPayment appends a payment seeded with the items total
func (h *ContractDraftHandler) AddPayment(c *gin.Context) {
	h.respond(c, http.StatusCreated, func(sess *appcontract.Session) (any, error) {
		index := sess.Draft().AddPayment()
		return dto.RowResponse{Index: index, Session: sess.Snapshot()}, nil
	})
}

// PatchPayment sets one field of a payment
func (h *ContractDraftHandler) PatchPayment(c *gin.Context) {
	var req dto.FieldPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		index, err := rowIndex(c, "payment", sess.Draft().Payments().Len())
		if err != nil {
			return nil, err
		}
		err = setField(req.Value, func(raw string) error {
			return sess.Draft().SetPayment(index, contract.PaymentField(req.Field), raw)
		})
		if err != nil {
			return nil, err
		}
		return sess.Snapshot(), nil
	})
}

// DeletePayment removes a payment
func (h *ContractDraftHandler) DeletePayment(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		index, err := rowIndex(c, "payment", sess.Draft().Payments().Len())
		if err != nil {
			return nil, err
		}
		sess.Draft().RemovePayment(index)
		return sess.Snapshot(), nil
	})
}

// Next advances the wizard when the current step is valid
func (h *ContractDraftHandler) Next(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		moved := sess.Next(c.Request.Context())
		return dto.NavigationResponse{Moved: moved, Session: sess.Snapshot()}, nil
	})
}

// Previous moves the wizard one step back
func (h *ContractDraftHandler) Previous(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		before := sess.Wizard().Current()
		sess.Wizard().Previous()
		return dto.NavigationResponse{Moved: sess.Wizard().Current() != before, Session: sess.Snapshot()}, nil
	})
}

// GoTo jumps to a step given by number or name
func (h *ContractDraftHandler) GoTo(c *gin.Context) {
	step, err := parseStep(c.Param("step"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		moved := sess.GoTo(c.Request.Context(), step)
		return dto.NavigationResponse{Moved: moved, Session: sess.Snapshot()}, nil
	})
}

// Review returns the review summary
func (h *ContractDraftHandler) Review(c *gin.Context) {
	h.respond(c, http.StatusOK, func(sess *appcontract.Session) (any, error) {
		return appcontract.ToReviewResponse(sess.Review()), nil
	})
}

// Submit validates the draft and saves the contract. The session is
// discarded once the contract is saved and kept for retry otherwise.
func (h *ContractDraftHandler) Submit(c *gin.Context) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		saved *contract.Contract
		mode  string
		resp  *dto.Response
		cause error
	)
	err := h.store.With(id, func(sess *appcontract.Session) error {
		mode = sess.Mode()
		var submitErr error
		saved, submitErr = sess.Submit(ctx)
		if submitErr == nil {
			return nil
		}

		var failed *contract.ValidationFailedError
		switch {
		case errors.As(submitErr, &failed):
			r := dto.NewValidationErrorResponse("Contract draft is invalid", middleware.GetRequestID(c), dto.DetailsFromMap(failed.Errors))
			r.Data = sess.Snapshot()
			resp = &r
		case appcontract.IsNotFound(submitErr):
			r := dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Contract not found", middleware.GetRequestID(c))
			resp = &r
		default:
			cause = submitErr
			r := dto.NewErrorResponseWithRequestID(dto.ErrCodeUpstream, sess.Draft().Errors()["form"], middleware.GetRequestID(c))
			r.Data = sess.Snapshot()
			resp = &r
		}
		return nil
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp != nil {
		if cause != nil {
			logger.GetGinLogger(c).Warn("Contract store rejected draft", zap.String("draft_id", id.String()), zap.Error(cause))
		}
		c.JSON(dto.GetHTTPStatus(resp.Error.Code), resp)
		return
	}

	h.store.Delete(id)
	if h.invalidator != nil {
		if err := h.invalidator.InvalidateProducts(ctx); err != nil {
			logger.GetGinLogger(c).Warn("Failed to invalidate product cache", zap.Error(err))
		}
	}

	status := http.StatusCreated
	if mode == appcontract.ModeEdit {
		status = http.StatusOK
	}
	c.JSON(status, dto.NewSuccessResponse(appcontract.ToContractResponse(saved)))
}

// rejectedFields carries a prepared error response out of a session callback
type rejectedFields struct {
	resp dto.Response
}

func (e *rejectedFields) Error() string { return e.resp.Error.Message }

// respond runs fn with exclusive access to the session and writes its result
func (h *ContractDraftHandler) respond(c *gin.Context, status int, fn func(*appcontract.Session) (any, error)) {
	id, ok := h.draftID(c)
	if !ok {
		return
	}

	var data any
	err := h.store.With(id, func(sess *appcontract.Session) error {
		var err error
		data, err = fn(sess)
		return err
	})

	var rejected *rejectedFields
	switch {
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, rejected.resp)
	case err != nil:
		h.HandleError(c, err)
	default:
		c.JSON(status, dto.NewSuccessResponse(data))
	}
}

func (h *ContractDraftHandler) draftID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(middleware.DraftIDParam))
	if err != nil {
		h.BadRequest(c, "Invalid draft ID")
		return uuid.Nil, false
	}
	return id, true
}

// rowIndex reads the :index parameter and checks it against the row count,
// so the ledgers never see an out-of-range index
func rowIndex(c *gin.Context, kind string, n int) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= n {
		return 0, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("No %s at index %s", kind, c.Param("index")))
	}
	return index, nil
}

func setField(value any, set func(raw string) error) error {
	raw, err := dto.FormValue(value)
	if err != nil {
		return shared.NewDomainError("INVALID_INPUT", err.Error())
	}
	return set(raw)
}

// parseStep accepts a step number or a step name
func parseStep(raw string) (contract.Step, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		step := contract.Step(n)
		if !step.IsValid() {
			return 0, fmt.Errorf("unknown step %q", raw)
		}
		return step, nil
	}
	for _, step := range contract.Steps {
		if step.String() == raw {
			return step, nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", raw)
}
