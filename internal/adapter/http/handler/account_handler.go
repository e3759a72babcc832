package handler

import (
	"strconv"

	"points-ledger/internal/adapter/http/dto"
	"points-ledger/internal/core/domain"
	"points-ledger/internal/core/ports"
	"points-ledger/pkg/apperror"
	"points-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account creation and the read side of the ledger.
type AccountHandler struct {
	accountSvc   ports.AccountService
	reportingSvc ports.ReportingService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService, reportingSvc ports.ReportingService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, reportingSvc: reportingSvc}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	account, err := h.accountSvc.Create(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromAccount(account))
}

// Get handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accountSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccount(account))
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	accountID := c.Param("id")

	balance, err := h.reportingSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// ListTransfers handles GET /api/v1/accounts/:id/transfers.
func (h *AccountHandler) ListTransfers(c *gin.Context) {
	params := ports.TransferListParams{
		AccountID: c.Param("id"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
	}
	if kind := c.Query("kind"); kind != "" {
		k := domain.TransferKind(kind)
		if !k.Valid() {
			response.Error(c, apperror.ErrInvalidKind(kind))
			return
		}
		params.Kind = &k
	}

	records, total, err := h.reportingSvc.ListTransfers(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromRecords(records, total, params))
}

// Reconcile handles GET /api/v1/accounts/:id/reconcile. It replays the
// account's record history and compares it with the stored balance.
func (h *AccountHandler) Reconcile(c *gin.Context) {
	accountID := c.Param("id")

	stored, err := h.reportingSvc.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	replayed, err := h.reportingSvc.ReplayBalance(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ReconcileResponse{
		AccountID:       accountID,
		StoredBalance:   stored,
		ReplayedBalance: replayed,
		Consistent:      stored == replayed,
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
