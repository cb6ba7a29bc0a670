package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/yushan-platform/analytics-api/internal/analytics"
)

const dateLayout = "2006-01-02"

// GetDailyActiveUsers returns active user counts for a single day
// @Summary Daily Active Users
// @Tags Analytics
// @Produce json
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} models.DailyActiveUsers "Daily activity"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/users/daily [get]
func (h *Handler) GetDailyActiveUsers(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(dateLayout, d)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	dau, err := h.analytics.DailyActiveUsers(r.Context(), date)
	if err != nil {
		h.logger.Errorw("Failed to compute daily active users", "date", date.Format(dateLayout), "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, dau)
}

// GetReadingActivity returns reading trend buckets over a date range
// @Summary Reading Activity Trend
// @Tags Analytics
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD), defaults to 30 days ago"
// @Param endDate query string false "Range end (YYYY-MM-DD), defaults to today"
// @Param period query string false "daily, weekly or monthly" default(daily)
// @Success 200 {object} models.ReadingActivity "Activity trend"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/reading/activity [get]
func (h *Handler) GetReadingActivity(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")

	activity, err := h.analytics.ReadingActivity(r.Context(), start, end, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			h.errorResponse(w, http.StatusBadRequest, "Invalid period, expected daily, weekly or monthly")
			return
		}
		h.logger.Errorw("Failed to compute reading activity", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, activity)
}

// GetUserTrends returns bucketed active-user trends over a date range
// @Summary User Activity Trends
// @Tags Analytics
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD), defaults to 30 days ago"
// @Param endDate query string false "Range end (YYYY-MM-DD), defaults to today"
// @Param period query string false "daily, weekly or monthly" default(daily)
// @Success 200 {object} models.UserTrends "User trend"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/users/trends [get]
func (h *Handler) GetUserTrends(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")

	trends, err := h.analytics.UserTrends(r.Context(), start, end, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			h.errorResponse(w, http.StatusBadRequest, "Invalid period, expected daily, weekly or monthly")
			return
		}
		h.logger.Errorw("Failed to compute user trends", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, trends)
}

// GetAnalyticsSummary returns windowed key metrics with growth rates
// @Summary Analytics Summary
// @Tags Analytics
// @Produce json
// @Param startDate query string false "Range start (YYYY-MM-DD), defaults to 30 days ago"
// @Param endDate query string false "Range end (YYYY-MM-DD), defaults to today"
// @Param period query string false "daily, weekly or monthly" default(daily)
// @Success 200 {object} models.AnalyticsSummary "Summary report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/summary [get]
func (h *Handler) GetAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	period := r.URL.Query().Get("period")

	summary, err := h.analytics.Summary(r.Context(), start, end, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			h.errorResponse(w, http.StatusBadRequest, "Invalid period, expected daily, weekly or monthly")
			return
		}
		h.logger.Errorw("Failed to compute analytics summary", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}

// dateRange parses the startDate/endDate query pair shared by the trend
// endpoints, defaulting to the trailing 30 days. It writes the 400 itself
// and reports ok=false when the request is rejected.
func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	end = time.Now().UTC()
	start = end.AddDate(0, 0, -30)

	if s := r.URL.Query().Get("startDate"); s != "" {
		parsed, err := time.Parse(dateLayout, s)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
			return start, end, false
		}
		start = parsed
	}
	if e := r.URL.Query().Get("endDate"); e != "" {
		parsed, err := time.Parse(dateLayout, e)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
			return start, end, false
		}
		end = parsed
	}
	if end.Before(start) {
		h.errorResponse(w, http.StatusBadRequest, "endDate must not precede startDate")
		return start, end, false
	}
	return start, end, true
}

// GetTopContent returns the most read novels over the whole history
// @Summary Top Content
// @Tags Analytics
// @Produce json
// @Param limit query int false "Max entries" default(10)
// @Success 200 {object} models.TopContent "Most read novels"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/content/top [get]
func (h *Handler) GetTopContent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	top, err := h.analytics.TopContent(r.Context(), limit)
	if err != nil {
		h.logger.Errorw("Failed to compute top content", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, top)
}

// GetPlatformStatistics returns the combined platform overview
// @Summary Platform Statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} models.PlatformStatistics "Platform overview"
// @Failure 500 {object} map[string]string "Internal Error"
// @Router /admin/analytics/platform [get]
func (h *Handler) GetPlatformStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.PlatformStatistics(r.Context())
	if err != nil {
		h.logger.Errorw("Failed to compute platform statistics", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Query failed")
		return
	}
	h.jsonResponse(w, http.StatusOK, stats)
}
