// Package api serves the portfolio over HTTP as JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/refresh"
	"github.com/etnz/fintrack/renderer"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Refresher triggers and reports refresh cycles.
type Refresher interface {
	RefreshOnce(ctx context.Context) (refresh.Result, error)
	LastRefreshAt() time.Time
	Running() bool
}

// Handlers contains the HTTP handlers of the portfolio API.
type Handlers struct {
	ledger    fintrack.Ledger
	refresher Refresher
	pair      fintrack.Pair
	log       zerolog.Logger
}

// NewHandlers creates the handlers. refresher may be nil, then refresh
// endpoints answer 503.
func NewHandlers(ledger fintrack.Ledger, refresher Refresher, pair fintrack.Pair, log zerolog.Logger) *Handlers {
	return &Handlers{
		ledger:    ledger,
		refresher: refresher,
		pair:      pair,
		log:       log.With().Str("handler", "portfolio").Logger(),
	}
}

// RegisterRoutes mounts the handlers on r.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.HandleGetDashboard)
	r.Get("/holdings", h.HandleGetHoldings)
	r.Get("/fx", h.HandleGetFX)
	r.Get("/status", h.HandleGetStatus)
	r.Post("/refresh", h.HandleRefresh)
}

// HandleGetDashboard returns the valued portfolio.
// GET /api/dashboard?format=md
func (h *Handlers) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := fintrack.NewReport(r.Context(), h.ledger, h.pair)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build dashboard")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(renderer.RenderDashboard(report)))
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleGetHoldings returns every asset with its position, held or not.
// GET /api/holdings
func (h *Handlers) HandleGetHoldings(w http.ResponseWriter, r *http.Request) {
	assets, err := h.ledger.ListAssets(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list assets")
		http.Error(w, "Failed to list assets", http.StatusInternalServerError)
		return
	}
	txs, err := h.ledger.ListTransactions(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, fintrack.Holdings(assets, txs))
}

// HandleGetFX returns the stored rate of the configured pair.
// GET /api/fx
func (h *Handlers) HandleGetFX(w http.ResponseWriter, r *http.Request) {
	rate, ok, err := h.ledger.FindFXRate(r.Context(), h.pair)
	if err != nil {
		h.log.Error().Err(err).Stringer("pair", h.pair).Msg("Failed to find rate")
		http.Error(w, "Failed to find rate", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "Rate not found", http.StatusNotFound)
		return
	}
	h.writeJSON(w, http.StatusOK, rate)
}

type statusResponse struct {
	Running       bool       `json:"running"`
	LastRefreshAt *time.Time `json:"lastRefreshAt,omitempty"`
}

// HandleGetStatus reports the state of the refresh engine.
// GET /api/status
func (h *Handlers) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	if h.refresher != nil {
		resp.Running = h.refresher.Running()
		if t := h.refresher.LastRefreshAt(); !t.IsZero() {
			resp.LastRefreshAt = &t
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type refreshResponse struct {
	Updated     []string          `json:"updated"`
	Failed      map[string]string `json:"failed,omitempty"`
	FX          *fintrack.FXRate  `json:"fx,omitempty"`
	FXError     string            `json:"fxError,omitempty"`
	CompletedAt time.Time         `json:"completedAt"`
}

func newRefreshResponse(res refresh.Result) refreshResponse {
	resp := refreshResponse{
		Updated:     res.Updated,
		FX:          res.FX,
		CompletedAt: res.CompletedAt,
	}
	if resp.Updated == nil {
		resp.Updated = []string{}
	}
	if len(res.Failed) > 0 {
		resp.Failed = make(map[string]string, len(res.Failed))
		for id, err := range res.Failed {
			resp.Failed[id] = err.Error()
		}
	}
	if res.FXErr != nil {
		resp.FXError = res.FXErr.Error()
	}
	return resp
}

// HandleRefresh runs one refresh cycle and returns its outcome.
// POST /api/refresh
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		http.Error(w, "Refresh is not available", http.StatusServiceUnavailable)
		return
	}
	res, err := h.refresher.RefreshOnce(r.Context())
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.log.Warn().Err(err).Msg("Refresh abandoned")
		http.Error(w, "Refresh abandoned", http.StatusServiceUnavailable)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to refresh")
		http.Error(w, "Failed to refresh", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, newRefreshResponse(res))
}

// writeJSON writes a JSON response.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
