package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
	"afrigo/internal/middleware"
	"afrigo/internal/service"
)

// PromoHandler handles HTTP requests for promo codes.
type PromoHandler struct {
	promoService *service.PromoService
}

// NewPromoHandler creates a new PromoHandler.
func NewPromoHandler(promoService *service.PromoService) *PromoHandler {
	return &PromoHandler{promoService: promoService}
}

// ValidatePromoRequest is the HTTP request body for validating a code.
type ValidatePromoRequest struct {
	Code        string `json:"code"`
	RideAmount  int64  `json:"ride_amount"`
	ServiceType string `json:"service_type"`
}

// ApplyPromoRequest is the HTTP request body for applying a code.
type ApplyPromoRequest struct {
	Code        string `json:"code"`
	RideAmount  int64  `json:"ride_amount"`
	ServiceType string `json:"service_type"`
	RideID      string `json:"ride_id,omitempty"`
}

// PromoQuoteResponse is the HTTP response for a promo validation or
// application.
type PromoQuoteResponse struct {
	Code        string `json:"code"`
	Discount    int64  `json:"discount"`
	FinalAmount int64  `json:"final_amount"`
}

// CreatePromoRequest is the HTTP request body for creating a code.
type CreatePromoRequest struct {
	Code           string   `json:"code"`
	Description    string   `json:"description,omitempty"`
	DiscountType   string   `json:"discount_type"` // PERCENTAGE, FIXED
	DiscountValue  int64    `json:"discount_value"`
	MaxUses        int      `json:"max_uses,omitempty"`
	MaxUsesPerUser int      `json:"max_uses_per_user,omitempty"`
	MinRideAmount  int64    `json:"min_ride_amount,omitempty"`
	StartsAt       string   `json:"starts_at,omitempty"`  // RFC 3339
	ExpiresAt      string   `json:"expires_at,omitempty"` // RFC 3339
	ServiceTypes   []string `json:"service_types,omitempty"`
}

// SetPromoActiveRequest is the HTTP request body for toggling a code.
type SetPromoActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// PromoResponse is the HTTP representation of a promo code.
type PromoResponse struct {
	ID             string   `json:"id"`
	Code           string   `json:"code"`
	Description    string   `json:"description,omitempty"`
	DiscountType   string   `json:"discount_type"`
	DiscountValue  int64    `json:"discount_value"`
	MaxUses        int      `json:"max_uses"`
	MaxUsesPerUser int      `json:"max_uses_per_user"`
	MinRideAmount  int64    `json:"min_ride_amount"`
	UsedCount      int      `json:"used_count"`
	IsActive       bool     `json:"is_active"`
	StartsAt       string   `json:"starts_at"`
	ExpiresAt      string   `json:"expires_at,omitempty"`
	ServiceTypes   []string `json:"service_types,omitempty"`
}

func toPromoResponse(p *domain.PromoCode) PromoResponse {
	resp := PromoResponse{
		ID:             p.ID,
		Code:           p.Code,
		Description:    p.Description,
		DiscountType:   string(p.DiscountType),
		DiscountValue:  p.DiscountValue,
		MaxUses:        p.MaxUses,
		MaxUsesPerUser: p.MaxUsesPerUser,
		MinRideAmount:  p.MinRideAmount,
		UsedCount:      p.UsedCount,
		IsActive:       p.IsActive,
		StartsAt:       p.StartsAt.Format(timeLayout),
	}
	if !p.ExpiresAt.IsZero() {
		resp.ExpiresAt = p.ExpiresAt.Format(timeLayout)
	}
	for _, st := range p.ServiceTypes {
		resp.ServiceTypes = append(resp.ServiceTypes, string(st))
	}
	return resp
}

// Validate handles POST /v1/promos/validate
func (h *PromoHandler) Validate(c *gin.Context) {
	var req ValidatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	quote, err := h.promoService.Validate(c.Request.Context(), middleware.GetPrincipal(c).UserID,
		req.Code, req.RideAmount, domain.ServiceType(req.ServiceType))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PromoQuoteResponse{
		Code:        quote.Code,
		Discount:    quote.Discount,
		FinalAmount: quote.FinalAmount,
	})
}

// Apply handles POST /v1/promos/apply
func (h *PromoHandler) Apply(c *gin.Context) {
	var req ApplyPromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	quote, err := h.promoService.Apply(c.Request.Context(), middleware.GetPrincipal(c),
		req.Code, req.RideAmount, domain.ServiceType(req.ServiceType), req.RideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PromoQuoteResponse{
		Code:        quote.Code,
		Discount:    quote.Discount,
		FinalAmount: quote.FinalAmount,
	})
}

// Create handles POST /v1/admin/promos
func (h *PromoHandler) Create(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var startsAt, expiresAt time.Time
	var err error
	if req.StartsAt != "" {
		startsAt, err = time.Parse(time.RFC3339, req.StartsAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid starts_at"})
			return
		}
	}
	if req.ExpiresAt != "" {
		expiresAt, err = time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid expires_at"})
			return
		}
	}

	serviceTypes := make([]domain.ServiceType, 0, len(req.ServiceTypes))
	for _, st := range req.ServiceTypes {
		serviceTypes = append(serviceTypes, domain.ServiceType(st))
	}

	promo, err := h.promoService.Create(c.Request.Context(), middleware.GetPrincipal(c), service.CreatePromoRequest{
		Code:           req.Code,
		Description:    req.Description,
		DiscountType:   domain.DiscountType(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		MinRideAmount:  req.MinRideAmount,
		StartsAt:       startsAt,
		ExpiresAt:      expiresAt,
		ServiceTypes:   serviceTypes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPromoResponse(promo))
}

// List handles GET /v1/admin/promos
func (h *PromoHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	promos, err := h.promoService.List(c.Request.Context(), middleware.GetPrincipal(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PromoResponse, 0, len(promos))
	for _, p := range promos {
		response = append(response, toPromoResponse(p))
	}
	respondJSON(c, http.StatusOK, response)
}

// SetActive handles PATCH /v1/admin/promos/:id
func (h *PromoHandler) SetActive(c *gin.Context) {
	var req SetPromoActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.promoService.SetActive(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.IsActive); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
