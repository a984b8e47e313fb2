package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afrigo/internal/domain"
	"afrigo/internal/middleware"
	"afrigo/internal/service"
)

// RatingHandler handles HTTP requests for ratings and reputation.
type RatingHandler struct {
	reputationService *service.ReputationService
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(reputationService *service.ReputationService) *RatingHandler {
	return &RatingHandler{reputationService: reputationService}
}

// SubmitRatingRequest is the HTTP request body for rating a ride.
type SubmitRatingRequest struct {
	RideID  string `json:"ride_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// RatingResponse is the HTTP representation of a rating.
type RatingResponse struct {
	ID        string `json:"id"`
	RideID    string `json:"ride_id"`
	RaterType string `json:"rater_type"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
	CreatedAt string `json:"created_at"`
}

// RatingConfigPayload is the HTTP representation of the reputation
// policy, for both reads and updates.
type RatingConfigPayload struct {
	BadRatingThreshold   int `json:"bad_rating_threshold"`
	WarningThreshold     int `json:"warning_threshold"`
	RedZoneThreshold     int `json:"red_zone_threshold"`
	AutoSuspendThreshold int `json:"auto_suspend_threshold"`
	EvaluationPeriod     int `json:"evaluation_period"`
}

// ReputationUserResponse is the HTTP representation of an at-risk
// account.
type ReputationUserResponse struct {
	ID                    string  `json:"id"`
	FirstName             string  `json:"first_name,omitempty"`
	LastName              string  `json:"last_name,omitempty"`
	Role                  string  `json:"role"`
	IsActive              bool    `json:"is_active"`
	AverageRating         float64 `json:"average_rating"`
	TotalRatings          int     `json:"total_ratings"`
	ConsecutiveBadRatings int     `json:"consecutive_bad_ratings"`
	ReputationStatus      string  `json:"reputation_status"`
	SuspendedAt           string  `json:"suspended_at,omitempty"`
	SuspendReason         string  `json:"suspend_reason,omitempty"`
}

// Submit handles POST /v1/ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	rating, err := h.reputationService.SubmitRating(c.Request.Context(), middleware.GetPrincipal(c), service.SubmitRatingRequest{
		RideID:  req.RideID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, RatingResponse{
		ID:        rating.ID,
		RideID:    rating.RideID,
		RaterType: string(rating.RaterType),
		Rating:    rating.Rating,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt.Format(timeLayout),
	})
}

// GetConfig handles GET /v1/admin/reputation/config
func (h *RatingHandler) GetConfig(c *gin.Context) {
	cfg, err := h.reputationService.GetConfig(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RatingConfigPayload{
		BadRatingThreshold:   cfg.BadRatingThreshold,
		WarningThreshold:     cfg.WarningThreshold,
		RedZoneThreshold:     cfg.RedZoneThreshold,
		AutoSuspendThreshold: cfg.AutoSuspendThreshold,
		EvaluationPeriod:     cfg.EvaluationPeriod,
	})
}

// UpdateConfig handles PUT /v1/admin/reputation/config
func (h *RatingHandler) UpdateConfig(c *gin.Context) {
	var req RatingConfigPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.reputationService.UpdateConfig(c.Request.Context(), middleware.GetPrincipal(c), domain.RatingConfig{
		BadRatingThreshold:   req.BadRatingThreshold,
		WarningThreshold:     req.WarningThreshold,
		RedZoneThreshold:     req.RedZoneThreshold,
		AutoSuspendThreshold: req.AutoSuspendThreshold,
		EvaluationPeriod:     req.EvaluationPeriod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResetReputation handles POST /v1/admin/reputation/:userId/reset
func (h *RatingHandler) ResetReputation(c *gin.Context) {
	err := h.reputationService.ResetReputation(c.Request.Context(), middleware.GetPrincipal(c), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListAtRisk handles GET /v1/admin/reputation/at-risk
func (h *RatingHandler) ListAtRisk(c *gin.Context) {
	users, err := h.reputationService.ListAtRisk(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReputationUserResponse, 0, len(users))
	for _, u := range users {
		item := ReputationUserResponse{
			ID:                    u.ID,
			FirstName:             u.FirstName,
			LastName:              u.LastName,
			Role:                  string(u.Role),
			IsActive:              u.IsActive,
			AverageRating:         u.AverageRating,
			TotalRatings:          u.TotalRatings,
			ConsecutiveBadRatings: u.ConsecutiveBadRatings,
			ReputationStatus:      string(u.ReputationStatus),
			SuspendReason:         u.SuspendReason,
		}
		if !u.SuspendedAt.IsZero() {
			item.SuspendedAt = u.SuspendedAt.Format(timeLayout)
		}
		response = append(response, item)
	}
	respondJSON(c, http.StatusOK, response)
}
