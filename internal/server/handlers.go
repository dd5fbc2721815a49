package server

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bobmcallan/sage/internal/models"
)

var validate = validator.New()

// handleChat handles POST /api/chat.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AdvisorRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		WriteError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp, err := s.app.AdvisorService.Chat(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// handleMarketQuote handles GET /api/market/quote/{symbol}.
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/quote/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote, err := s.app.QuoteService.GetQuote(r.Context(), symbol)
	if err != nil {
		s.logger.Info().Str("symbol", symbol).Err(err).Msg("Quote lookup failed")
		WriteError(w, http.StatusNotFound, "No quote available for "+strings.ToUpper(symbol))
		return
	}

	WriteJSON(w, http.StatusOK, quote)
}

// handleMarketContext handles GET /api/market/context/{symbol}. It exposes
// the raw aggregated context for introspection; pass ?format=text for the
// prompt-facing rendering instead.
func (s *Server) handleMarketContext(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/context/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	result, err := s.app.ContextService.Aggregate(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(s.app.ContextService.Format(result)))
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
