package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
	"afrigo/internal/middleware"
	"afrigo/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
	pricing     *service.PricingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService, pricing *service.PricingService) *RideHandler {
	return &RideHandler{rideService: rideService, pricing: pricing}
}

// EstimateRequest is the HTTP request body for a price estimate.
type EstimateRequest struct {
	OriginLat   float64 `json:"origin_lat"`
	OriginLng   float64 `json:"origin_lng"`
	DestLat     float64 `json:"dest_lat"`
	DestLng     float64 `json:"dest_lng"`
	ServiceType string  `json:"service_type"`
	VipTier     string  `json:"vip_tier,omitempty"`
}

// EstimateResponse is the HTTP representation of a price estimate.
type EstimateResponse struct {
	DistanceKm     float64 `json:"distance_km"`
	DurationMin    int     `json:"duration_min"`
	EstimatedPrice int64   `json:"estimated_price"`
}

// RequestRideRequest is the HTTP request body for requesting a ride.
type RequestRideRequest struct {
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	OriginAddress  string  `json:"origin_address,omitempty"`
	DestLat        float64 `json:"dest_lat"`
	DestLng        float64 `json:"dest_lng"`
	DestAddress    string  `json:"dest_address,omitempty"`
	ServiceType    string  `json:"service_type"`
	VipTier        string  `json:"vip_tier,omitempty"`
	PaymentMethod  string  `json:"payment_method"` // CASH, WALLET, MOBILE_MONEY, CARD
	EstimatedPrice int64   `json:"estimated_price,omitempty"`
	ScheduledTime  string  `json:"scheduled_time,omitempty"` // RFC 3339
	PassengerName  string  `json:"passenger_name,omitempty"`
	PassengerPhone string  `json:"passenger_phone,omitempty"`
}

// UpdateRideStatusRequest is the HTTP request body for advancing a ride.
type UpdateRideStatusRequest struct {
	Status     string `json:"status"`
	FinalPrice int64  `json:"final_price,omitempty"`
}

// CancelRideRequest is the HTTP request body for cancelling a ride.
type CancelRideRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID             string  `json:"id"`
	ClientID       string  `json:"client_id"`
	DriverID       string  `json:"driver_id,omitempty"`
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	OriginAddress  string  `json:"origin_address,omitempty"`
	DestLat        float64 `json:"dest_lat"`
	DestLng        float64 `json:"dest_lng"`
	DestAddress    string  `json:"dest_address,omitempty"`
	ServiceType    string  `json:"service_type"`
	VipTier        string  `json:"vip_tier,omitempty"`
	Status         string  `json:"status"`
	EstimatedPrice int64   `json:"estimated_price"`
	FinalPrice     int64   `json:"final_price,omitempty"`
	PaymentMethod  string  `json:"payment_method"`
	PaymentStatus  string  `json:"payment_status"`
	ScheduledTime  string  `json:"scheduled_time,omitempty"`
	PassengerName  string  `json:"passenger_name,omitempty"`
	PassengerPhone string  `json:"passenger_phone,omitempty"`
	CancelReason   string  `json:"cancel_reason,omitempty"`
	CreatedAt      string  `json:"created_at"`
	StartedAt      string  `json:"started_at,omitempty"`
	CompletedAt    string  `json:"completed_at,omitempty"`
	CancelledAt    string  `json:"cancelled_at,omitempty"`
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func toRideResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:             r.ID,
		ClientID:       r.ClientID,
		DriverID:       r.DriverID,
		OriginLat:      r.OriginLat,
		OriginLng:      r.OriginLng,
		OriginAddress:  r.OriginAddress,
		DestLat:        r.DestLat,
		DestLng:        r.DestLng,
		DestAddress:    r.DestAddress,
		ServiceType:    string(r.ServiceType),
		VipTier:        r.VipTier,
		Status:         string(r.Status),
		EstimatedPrice: r.EstimatedPrice,
		FinalPrice:     r.FinalPrice,
		PaymentMethod:  string(r.PaymentMethod),
		PaymentStatus:  string(r.PaymentStatus),
		PassengerName:  r.PassengerName,
		PassengerPhone: r.PassengerPhone,
		CancelReason:   r.CancelReason,
		CreatedAt:      r.CreatedAt.Format(timeLayout),
	}
	if !r.ScheduledTime.IsZero() {
		resp.ScheduledTime = r.ScheduledTime.Format(timeLayout)
	}
	if !r.StartedAt.IsZero() {
		resp.StartedAt = r.StartedAt.Format(timeLayout)
	}
	if !r.CompletedAt.IsZero() {
		resp.CompletedAt = r.CompletedAt.Format(timeLayout)
	}
	if !r.CancelledAt.IsZero() {
		resp.CancelledAt = r.CancelledAt.Format(timeLayout)
	}
	return resp
}

func toRideResponses(rides []*domain.Ride) []RideResponse {
	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	return response
}

// Estimate handles POST /v1/rides/estimate
func (h *RideHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	est, err := h.pricing.Estimate(service.EstimateRequest{
		OriginLat:   req.OriginLat,
		OriginLng:   req.OriginLng,
		DestLat:     req.DestLat,
		DestLng:     req.DestLng,
		ServiceType: domain.ServiceType(req.ServiceType),
		VipTier:     req.VipTier,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimateResponse{
		DistanceKm:     est.DistanceKm,
		DurationMin:    est.DurationMin,
		EstimatedPrice: est.EstimatedPrice,
	})
}

// RequestRide handles POST /v1/rides
func (h *RideHandler) RequestRide(c *gin.Context) {
	var req RequestRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.RequestRide(c.Request.Context(), middleware.GetPrincipal(c), service.RequestRideRequest{
		OriginLat:      req.OriginLat,
		OriginLng:      req.OriginLng,
		OriginAddress:  req.OriginAddress,
		DestLat:        req.DestLat,
		DestLng:        req.DestLng,
		DestAddress:    req.DestAddress,
		ServiceType:    domain.ServiceType(req.ServiceType),
		VipTier:        req.VipTier,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		EstimatedPrice: req.EstimatedPrice,
		ScheduledTime:  req.ScheduledTime,
		PassengerName:  req.PassengerName,
		PassengerPhone: req.PassengerPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// ListMyRides handles GET /v1/rides
func (h *RideHandler) ListMyRides(c *gin.Context) {
	rides, err := h.rideService.ListMyRides(c.Request.Context(), middleware.GetPrincipal(c), 0)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// ListOpenRides handles GET /v1/rides/open
func (h *RideHandler) ListOpenRides(c *gin.Context) {
	rides, err := h.rideService.ListOpenRides(c.Request.Context(), middleware.GetPrincipal(c), 0)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponses(rides))
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	ride, err := h.rideService.AcceptRide(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// UpdateStatus handles PATCH /v1/rides/:id/status
func (h *RideHandler) UpdateStatus(c *gin.Context) {
	var req UpdateRideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c),
		c.Param("id"), domain.RideStatus(req.Status), req.FinalPrice)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	var req CancelRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rideService.CancelRide(c.Request.Context(), middleware.GetPrincipal(c), c.Param("id"), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
