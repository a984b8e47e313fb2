package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
	"afrigo/internal/middleware"
	"afrigo/internal/service"
)

// ReferralHandler handles HTTP requests for the referral programme.
type ReferralHandler struct {
	referralService *service.ReferralService
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referralService *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referralService: referralService}
}

// ApplyReferralRequest is the HTTP request body for applying a code.
type ApplyReferralRequest struct {
	Code string `json:"code"`
}

// ReferralCodeResponse is the HTTP response for a code request.
type ReferralCodeResponse struct {
	Code string `json:"code"`
}

// ReferralResponse is the HTTP representation of a referral.
type ReferralResponse struct {
	ID            string `json:"id"`
	ReferrerID    string `json:"referrer_id"`
	RefereeID     string `json:"referee_id"`
	Status        string `json:"status"`
	ReferrerBonus int64  `json:"referrer_bonus,omitempty"`
	RefereeBonus  int64  `json:"referee_bonus,omitempty"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

func toReferralResponse(r *domain.Referral) ReferralResponse {
	resp := ReferralResponse{
		ID:            r.ID,
		ReferrerID:    r.ReferrerID,
		RefereeID:     r.RefereeID,
		Status:        string(r.Status),
		ReferrerBonus: r.ReferrerBonus,
		RefereeBonus:  r.RefereeBonus,
		CreatedAt:     r.CreatedAt.Format(timeLayout),
	}
	if !r.CompletedAt.IsZero() {
		resp.CompletedAt = r.CompletedAt.Format(timeLayout)
	}
	return resp
}

// MyCode handles GET /v1/referrals/code
func (h *ReferralHandler) MyCode(c *gin.Context) {
	code, err := h.referralService.MyCode(c.Request.Context(), middleware.GetPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ReferralCodeResponse{Code: code})
}

// Apply handles POST /v1/referrals/apply
func (h *ReferralHandler) Apply(c *gin.Context) {
	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	referral, err := h.referralService.ApplyCode(c.Request.Context(), middleware.GetPrincipal(c), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReferralResponse(referral))
}

// ListMine handles GET /v1/referrals
func (h *ReferralHandler) ListMine(c *gin.Context) {
	referrals, err := h.referralService.ListMine(c.Request.Context(), middleware.GetPrincipal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReferralResponse, 0, len(referrals))
	for _, r := range referrals {
		response = append(response, toReferralResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}
