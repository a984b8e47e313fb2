package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
	"afrigo/internal/middleware"
	"afrigo/internal/service"
)

// WalletHandler handles HTTP requests for wallets.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// MoneyRequest is the HTTP request body for deposits and withdrawals.
type MoneyRequest struct {
	Amount int64 `json:"amount"`
}

// WalletResponse is the HTTP representation of a wallet.
type WalletResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}

// BalanceResponse is the HTTP response for a balance query.
type BalanceResponse struct {
	Balance int64 `json:"balance"`
}

// TransactionResponse is the HTTP representation of a ledger entry.
type TransactionResponse struct {
	ID          string `json:"id"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toTransactionResponses(txns []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		response = append(response, TransactionResponse{
			ID:          t.ID,
			Amount:      t.Amount,
			Type:        string(t.Type),
			Status:      string(t.Status),
			Description: t.Description,
			CreatedAt:   t.CreatedAt.Format(timeLayout),
		})
	}
	return response
}

// Deposit handles POST /v1/wallet/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	var req MoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	wallet, err := h.walletService.Deposit(c.Request.Context(), middleware.GetPrincipal(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, WalletResponse{
		ID:      wallet.ID,
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
	})
}

// Withdraw handles POST /v1/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	var req MoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	wallet, err := h.walletService.Withdraw(c.Request.Context(), middleware.GetPrincipal(c), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, WalletResponse{
		ID:      wallet.ID,
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
	})
}

// GetBalance handles GET /v1/wallet/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	balance, err := h.walletService.GetBalance(c.Request.Context(), middleware.GetPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, BalanceResponse{Balance: balance})
}

// ListTransactions handles GET /v1/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	txns, err := h.walletService.ListTransactions(c.Request.Context(), middleware.GetPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTransactionResponses(txns))
}
