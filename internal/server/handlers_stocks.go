package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) stocksConfigured(w http.ResponseWriter) bool {
	if s.deps.Stocks == nil {
		writeError(w, s.logger, fmt.Errorf("%w: stocks (set stocks.api_key)", errNotConfigured))
		return false
	}
	return true
}

func (s *Server) handleStockSearch(w http.ResponseWriter, r *http.Request) {
	if !s.stocksConfigured(w) {
		return
	}
	matches, err := s.deps.Stocks.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches})
}

func (s *Server) handleStockSentiment(w http.ResponseWriter, r *http.Request) {
	if !s.stocksConfigured(w) {
		return
	}
	sentiment, err := s.deps.Stocks.Sentiment(r.Context(), mux.Vars(r)["symbol"])
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sentiment)
}

func (s *Server) handleStockChart(w http.ResponseWriter, r *http.Request) {
	if !s.stocksConfigured(w) {
		return
	}
	symbol := mux.Vars(r)["symbol"]
	chart, err := s.deps.Stocks.ChartURL(symbol)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "chartUrl": chart})
}
