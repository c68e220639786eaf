package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/geolife-backend-go/internal/service"
	"github.com/jengzang/geolife-backend-go/pkg/response"
)

// StatsHandler handles HTTP requests for the Geolife statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// fail maps service errors to HTTP responses
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoData):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	default:
		c.Error(err)
		response.InternalError(c, err.Error())
	}
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return v, true
}

func queryFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return v, true
}

// GetCounts handles GET /api/v1/stats/counts
func (h *StatsHandler) GetCounts(c *gin.Context) {
	counts, err := h.statsService.Counts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, counts)
}

// GetAverageActivities handles GET /api/v1/stats/average-activities
func (h *StatsHandler) GetAverageActivities(c *gin.Context) {
	avg, err := h.statsService.AverageActivitiesPerUser(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"averageActivitiesPerUser": avg})
}

// GetTopUsers handles GET /api/v1/stats/top-users
func (h *StatsHandler) GetTopUsers(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultLimit)
	if !ok {
		return
	}
	top, err := h.statsService.TopUsersByActivityCount(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, top)
}

// GetModeUsers handles GET /api/v1/stats/mode-users
func (h *StatsHandler) GetModeUsers(c *gin.Context) {
	mode := c.DefaultQuery("mode", service.DefaultMode)
	users, err := h.statsService.UsersWhoTookMode(c.Request.Context(), mode)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"mode": mode, "users": users})
}

// GetModes handles GET /api/v1/stats/modes
func (h *StatsHandler) GetModes(c *gin.Context) {
	modes, err := h.statsService.ModeCounts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, modes)
}

// GetBusiestYear handles GET /api/v1/stats/busiest-year
func (h *StatsHandler) GetBusiestYear(c *gin.Context) {
	busiest, err := h.statsService.BusiestYear(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, busiest)
}

// GetDistance handles GET /api/v1/stats/distance
func (h *StatsHandler) GetDistance(c *gin.Context) {
	year, ok := queryInt(c, "year", service.DefaultDistanceYear)
	if !ok {
		return
	}
	report, err := h.statsService.DistanceWalked(c.Request.Context(),
		c.DefaultQuery("user", service.DefaultDistanceUser),
		c.DefaultQuery("mode", service.DefaultDistanceMode),
		year)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"report": report, "kilometers": report.Kilometers()})
}

// GetAltitudeGain handles GET /api/v1/stats/altitude-gain
func (h *StatsHandler) GetAltitudeGain(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultLimit)
	if !ok {
		return
	}
	gains, err := h.statsService.TopAltitudeGain(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gains)
}

// GetInvalidActivities handles GET /api/v1/stats/invalid-activities
func (h *StatsHandler) GetInvalidActivities(c *gin.Context) {
	invalid, err := h.statsService.InvalidActivities(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, invalid)
}

// GetNearby handles GET /api/v1/stats/nearby
func (h *StatsHandler) GetNearby(c *gin.Context) {
	lat, ok := queryFloat(c, "lat", service.DefaultNearLatitude)
	if !ok {
		return
	}
	lon, ok := queryFloat(c, "lon", service.DefaultNearLongitude)
	if !ok {
		return
	}
	radius, ok := queryFloat(c, "radius", service.DefaultNearRadius)
	if !ok {
		return
	}
	year, ok := queryInt(c, "year", 0)
	if !ok {
		return
	}

	report, err := h.statsService.UsersNear(c.Request.Context(), lat, lon, radius, year)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, report)
}

// GetMostUsedModes handles GET /api/v1/stats/most-used-modes
func (h *StatsHandler) GetMostUsedModes(c *gin.Context) {
	modes, err := h.statsService.MostUsedModes(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, modes)
}
