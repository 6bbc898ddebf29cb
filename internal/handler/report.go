package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

type dailySummaryView struct {
	Day       string          `json:"day"`
	Orders    int             `json:"orders"`
	Gross     decimal.Decimal `json:"gross"`
	Discounts decimal.Decimal `json:"discounts"`
	Net       decimal.Decimal `json:"net"`
}

type monthlySummaryView struct {
	Month     string          `json:"month"`
	Orders    int             `json:"orders"`
	Gross     decimal.Decimal `json:"gross"`
	Discounts decimal.Decimal `json:"discounts"`
	Net       decimal.Decimal `json:"net"`
}

type topItemView struct {
	Name     string          `json:"name"`
	Variant  string          `json:"variant"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// reportRange reads the from/to day query parameters, defaulting to the last
// 30 days ending today.
func reportRange(r *http.Request) (from, to time.Time, err error) {
	now := time.Now()
	to = now
	from = now.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err = time.ParseInLocation(dayFormat, raw, time.Local)
		if err != nil {
			return from, to, errors.Wrap(err, "parse from")
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err = time.ParseInLocation(dayFormat, raw, time.Local)
		if err != nil {
			return from, to, errors.Wrap(err, "parse to")
		}
	}
	if to.Before(from) {
		return from, to, errors.New("to precedes from")
	}
	return from, to, nil
}

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	summaries, err := h.reports.Daily(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]dailySummaryView, len(summaries))
	for i, s := range summaries {
		views[i] = dailySummaryView{
			Day:       s.Day.Format(dayFormat),
			Orders:    s.Orders,
			Gross:     s.Gross,
			Discounts: s.Discounts,
			Net:       s.Net,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": views})
}

func (h *Handler) monthlyReport(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, errors.Wrap(err, "parse year"))
			return
		}
		year = parsed
	}

	summaries, err := h.reports.Monthly(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]monthlySummaryView, len(summaries))
	for i, s := range summaries {
		views[i] = monthlySummaryView{
			Month:     s.Month.Format("2006-01"),
			Orders:    s.Orders,
			Gross:     s.Gross,
			Discounts: s.Discounts,
			Net:       s.Net,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": views})
}

func (h *Handler) topItemsReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportRange(r)
	if err != nil {
		writeBadRequest(w, err)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeBadRequest(w, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	items, err := h.reports.TopItems(r.Context(), from, to, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]topItemView, len(items))
	for i, item := range items {
		views[i] = topItemView(item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": views})
}
