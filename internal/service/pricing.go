package service

import (
	"math"
	"time"

	"afrigo/internal/domain"
)

// Tariff holds the per-service pricing parameters, in XAF.
type Tariff struct {
	BasePrice   int64
	PricePerKm  int64
	PricePerMin int64
	FuelIndex   float64
}

// defaultTariffs are the seeded pricing parameters per service type.
var defaultTariffs = map[domain.ServiceType]Tariff{
	domain.ServiceTypeTaxi:    {BasePrice: 1000, PricePerKm: 500, PricePerMin: 50, FuelIndex: 1.0},
	domain.ServiceTypeMoto:    {BasePrice: 500, PricePerKm: 300, PricePerMin: 30, FuelIndex: 1.0},
	domain.ServiceTypeConfort: {BasePrice: 1500, PricePerKm: 700, PricePerMin: 70, FuelIndex: 1.0},
	domain.ServiceTypeVIP:     {BasePrice: 2500, PricePerKm: 1000, PricePerMin: 100, FuelIndex: 1.0},
}

// vipMultipliers scale the VIP price by tier.
var vipMultipliers = map[string]float64{
	"Business": 1.6,
	"XL":       2.0,
	"Luxury":   2.2,
}

// PricingService computes ride estimates. It is a pure calculation
// collaborator; the ride lifecycle only consumes its estimatedPrice.
type PricingService struct {
	tariffs map[domain.ServiceType]Tariff

	// Now is the clock used for the traffic factor; overridable in tests.
	Now func() time.Time
}

// NewPricingService creates a new PricingService with default tariffs.
func NewPricingService() *PricingService {
	return &PricingService{
		tariffs: defaultTariffs,
		Now:     time.Now,
	}
}

// EstimateRequest contains the parameters for a price estimate.
type EstimateRequest struct {
	OriginLat   float64
	OriginLng   float64
	DestLat     float64
	DestLng     float64
	ServiceType domain.ServiceType
	VipTier     string
}

// Estimate is the result of a price calculation.
type Estimate struct {
	DistanceKm     float64
	DurationMin    int
	EstimatedPrice int64
}

// Estimate computes distance, duration and price for a prospective ride.
func (s *PricingService) Estimate(req EstimateRequest) (*Estimate, error) {
	if !isValidLatitude(req.OriginLat) || !isValidLongitude(req.OriginLng) {
		return nil, ErrInvalidOriginLocation
	}
	if !isValidLatitude(req.DestLat) || !isValidLongitude(req.DestLng) {
		return nil, ErrInvalidDestLocation
	}

	tariff, ok := s.tariffs[req.ServiceType]
	if !ok {
		return nil, ErrInvalidServiceType
	}

	distanceKm := haversineKm(req.OriginLat, req.OriginLng, req.DestLat, req.DestLng)

	// Motos move faster through traffic than cars.
	speedKmh := 30.0
	if req.ServiceType == domain.ServiceTypeMoto {
		speedKmh = 40.0
	}
	durationMin := distanceKm / speedKmh * 60

	price := float64(tariff.BasePrice) +
		distanceKm*float64(tariff.PricePerKm)*tariff.FuelIndex +
		durationMin*float64(tariff.PricePerMin)*TrafficFactor(s.Now().UTC())

	if req.ServiceType == domain.ServiceTypeVIP && req.VipTier != "" {
		if multiplier, ok := vipMultipliers[req.VipTier]; ok {
			price *= multiplier
		}
	}

	return &Estimate{
		DistanceKm:     distanceKm,
		DurationMin:    int(math.Ceil(durationMin)),
		EstimatedPrice: roundUpToHundred(price),
	}, nil
}

// TrafficFactor returns the time-of-day surcharge multiplier. Peak
// hours are 07:00-09:00 and 17:00-19:00.
func TrafficFactor(t time.Time) float64 {
	hour := t.Hour()
	if (hour >= 7 && hour < 9) || (hour >= 17 && hour < 19) {
		return 1.5
	}
	return 1.0
}

// haversineKm computes the great-circle distance between two points.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// roundUpToHundred rounds a price up to the nearest 100 XAF.
func roundUpToHundred(price float64) int64 {
	return int64(math.Ceil(price/100)) * 100
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}
