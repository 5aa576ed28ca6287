package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

type Handlers struct {
	Q *app.QueryService
	E *app.EditService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Route("/v1/sources", func(r chi.Router) {
		r.Get("/", h.listSources)
		r.Get("/{source}/ledger", h.getLedger)
		r.Get("/{source}/cells/{date}/{hotel}", h.getCell)
		r.Put("/{source}/cells/{date}/{hotel}", h.putCell)
		r.Get("/{source}/runs", h.listRuns)
		r.Get("/{source}/runs/{date}/status", h.runStatus)
		r.Get("/{source}/runs/{date}/misses", h.listMisses)
	})
}

// ---- response bodies ----

type sourceResponse struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Targets int     `json:"targets"`
}

type ledgerRow struct {
	Hotel   string             `json:"hotel"`
	Scores  map[string]float64 `json:"scores"`
	Average *float64           `json:"average"`
}

type ledgerResponse struct {
	Source string      `json:"source"`
	Dates  []string    `json:"dates"`
	Rows   []ledgerRow `json:"rows"`
}

type cellResponse struct {
	Source   string   `json:"source"`
	Hotel    string   `json:"hotel"`
	Date     string   `json:"date"`
	Value    *float64 `json:"value"`
	Missing  bool     `json:"missing"`
	Previous *float64 `json:"previous,omitempty"`
	Average  *float64 `json:"average,omitempty"`
}

type runResponse struct {
	ID         string `json:"id,omitempty"`
	Source     string `json:"source"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Exists     *bool  `json:"exists,omitempty"`
	HasDate    *bool  `json:"has_date,omitempty"`
	Scored     int    `json:"scored"`
	Total      int    `json:"total"`
	StartedAt  string `json:"started_at,omitempty"`
	FinishedAt string `json:"finished_at,omitempty"`
}

type missResponse struct {
	Hotel  string `json:"hotel"`
	Reason string `json:"reason"`
}

type putCellRequest struct {
	Value *float64 `json:"value"`
}

// ---- helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors to problem responses.
func writeError(w http.ResponseWriter, err error) {
	var (
		rangeErr  *app.RangeError
		formatErr *ledger.FormatError
	)
	switch {
	case errors.As(err, &rangeErr):
		writeProblem(w, http.StatusUnprocessableEntity, "Score out of range", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &formatErr):
		log.Error().Err(err).Msg("ledger unreadable")
		writeProblem(w, http.StatusInternalServerError, "Ledger unreadable", formatErr.Reason)
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

// writeJSON sends v with a weak ETag and answers 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if status == http.StatusOK && etag != "" {
		if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
			w.Header().Set("ETag", etag)
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func dateParam(w http.ResponseWriter, r *http.Request) (domain.DateColumn, bool) {
	d, err := domain.ParseDateColumn(chi.URLParam(r, "date"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid date", err.Error())
		return "", false
	}
	return d, true
}

func hotelParam(r *http.Request) domain.HotelKey {
	raw := chi.URLParam(r, "hotel")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return domain.NormalizeHotelKey(raw)
}

// ---- handlers ----

func (h *Handlers) listSources(w http.ResponseWriter, r *http.Request) {
	out := []sourceResponse{}
	for _, s := range h.Q.Sources() {
		n := 0
		for _, t := range s.Targets {
			if t != "" {
				n++
			}
		}
		out = append(out, sourceResponse{Name: s.Name, Min: s.Scale.Min, Max: s.Scale.Max, Targets: n})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) getLedger(w http.ResponseWriter, r *http.Request) {
	v, err := h.Q.GetLedger(r.Context(), chi.URLParam(r, "source"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := ledgerResponse{Source: v.Source, Dates: []string{}, Rows: []ledgerRow{}}
	for _, d := range v.Dates {
		out.Dates = append(out.Dates, string(d))
	}
	for _, row := range v.Rows {
		lr := ledgerRow{Hotel: string(row.Hotel), Scores: map[string]float64{}, Average: row.Average}
		for d, s := range row.Scores {
			lr.Scores[string(d)] = s
		}
		out.Rows = append(out.Rows, lr)
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) getCell(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	c, err := h.Q.GetCell(r.Context(), chi.URLParam(r, "source"), hotelParam(r), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cellResponse{
		Source: c.Source, Hotel: string(c.Hotel), Date: string(c.Date), Value: c.Value, Missing: c.Missing,
	})
}

func (h *Handlers) putCell(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	var req putCellRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || req.Value == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", `expected {"value": <number>}`)
		return
	}
	res, err := h.E.Override(r.Context(), chi.URLParam(r, "source"), hotelParam(r), date, *req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	v := res.Value
	writeJSON(w, r, http.StatusOK, cellResponse{
		Source: res.Source, Hotel: string(res.Hotel), Date: string(res.Date),
		Value: &v, Previous: res.Previous, Average: res.Average,
	})
}

func (h *Handlers) runStatus(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	st, err := h.Q.RunStatus(r.Context(), chi.URLParam(r, "source"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, http.StatusOK, runResponse{
		Source: st.Source, Date: string(st.Date), Status: string(st.Status),
		Exists: &st.Exists, HasDate: &st.HasDate, Scored: st.Scored, Total: st.Total,
	})
}

func (h *Handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}
	runs, err := h.Q.ListRuns(r.Context(), chi.URLParam(r, "source"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]runResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runResponse{
			ID: run.ID, Source: run.Source, Date: string(run.Date), Status: string(run.Status),
			Scored: run.Scored, Total: run.Total,
			StartedAt:  run.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			FinishedAt: run.FinishedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (h *Handlers) listMisses(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}
	ms, err := h.Q.ListMisses(r.Context(), chi.URLParam(r, "source"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]missResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, missResponse{Hotel: string(m.Hotel), Reason: m.Reason})
	}
	writeJSON(w, r, http.StatusOK, out)
}
