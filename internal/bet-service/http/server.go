package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/auth"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/cache"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/dto"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/lifecycle"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/model"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/stats"
	"github.com/LordMercury-blip/Web3-Betting-dapp/internal/bet-service/store"
	"github.com/LordMercury-blip/Web3-Betting-dapp/pkg/contracts/events"
)

// Publisher emits domain events after successful mutations.
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

type Server struct {
	log   *zap.Logger
	mgr   *lifecycle.Manager
	reads *cache.Coordinator
	guard *auth.Guard
	publ  Publisher
}

func NewServer(log *zap.Logger, mgr *lifecycle.Manager, reads *cache.Coordinator, guard *auth.Guard, publ Publisher) *Server {
	return &Server{log: log, mgr: mgr, reads: reads, guard: guard, publ: publ}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/betting", func(r chi.Router) {
		r.Post("/place", s.placeBet)
		r.Post("/settle", s.settleBet)
		r.Get("/user/{address}", s.userBets)
		r.Get("/active/list", s.activeBets)
		r.Post("/{betId}/cancel", s.cancelBet)
		r.Get("/{betId}", s.getBet)
	})

	r.Get("/leaderboard", s.leaderboard)
	r.Get("/leaderboard/rank/{address}", s.userRank)

	r.Get("/stats/global", s.globalStats)
	r.Get("/stats/user/{address}", s.userStats)
	r.Get("/stats/tokens", s.tokenStats)

	r.Post("/users/preferences", s.updatePreferences)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain error kinds to status codes. Internal causes stay
// in the logs.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: ve.Error(), Kind: "validation_error", Field: ve.Field})
	case errors.Is(err, model.ErrDuplicateSubmission):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(), Kind: "duplicate_submission"})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(), Kind: "not_found"})
	case errors.Is(err, model.ErrInvalidState):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(), Kind: "invalid_state"})
	case errors.Is(err, model.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{
			Error: err.Error(), Kind: "unauthorized"})
	case errors.Is(err, model.ErrDailyLimit):
		writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{
			Error: err.Error(), Kind: "daily_limit"})
	case errors.Is(err, model.ErrStoreUnavailable):
		s.log.Error("store unavailable", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{
			Error: "temporarily unavailable, retry safe", Kind: "store_unavailable"})
	default:
		s.log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal error", Kind: "internal"})
	}
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json", Kind: "validation_error"})
		return
	}

	bet, err := s.mgr.PlaceBet(r.Context(), lifecycle.PlaceBetInput{
		UserAddress: req.UserAddress,
		Token:       req.Token,
		Amount:      req.Amount,
		Direction:   req.Direction,
		Duration:    req.Duration,
		TxHash:      req.TxHash,
		StartPrice:  req.StartPrice,
		CommitHash:  req.CommitHash,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.publ != nil {
		if err := s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
			BetID:       bet.ID,
			UserAddress: bet.UserAddress,
			Token:       bet.Token,
			Amount:      bet.Amount,
			Direction:   bet.Direction,
			Duration:    bet.Duration,
			TxHash:      bet.TxHash,
			TsUnixMs:    bet.StartTime.UnixMilli(),
		}); err != nil {
			s.log.Warn("publish bet_placed", zap.String("betId", bet.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		Success: true,
		BetID:   bet.ID,
		Message: "Bet placed successfully",
	})
}

func (s *Server) settleBet(w http.ResponseWriter, r *http.Request) {
	var req dto.SettleBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json", Kind: "validation_error"})
		return
	}
	if req.BetID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "betId required", Kind: "validation_error", Field: "betId"})
		return
	}

	bet, err := s.mgr.SettleBet(r.Context(), req.BetID, lifecycle.SettleInput{
		EndPrice:     req.EndPrice,
		IsWinner:     req.IsWinner,
		Payout:       req.Payout,
		SettleTxHash: req.TxHash,
		RevealTxHash: req.RevealTxHash,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.publ != nil {
		if err := s.publ.PublishBetSettled(r.Context(), events.BetSettled{
			BetID:       bet.ID,
			UserAddress: bet.UserAddress,
			Token:       bet.Token,
			IsWinner:    bet.IsWinner,
			Payout:      bet.Payout,
			TsUnixMs:    bet.SettledAt.UnixMilli(),
		}); err != nil {
			s.log.Warn("publish bet_settled", zap.String("betId", bet.ID), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, dto.SettleBetResponse{
		Success: true,
		Message: "Bet settled successfully",
	})
}

func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request) {
	betID := chi.URLParam(r, "betId")
	if _, err := s.mgr.CancelBet(r.Context(), betID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SettleBetResponse{Success: true, Message: "Bet cancelled"})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	bet, err := s.mgr.GetBet(r.Context(), chi.URLParam(r, "betId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bet)
}

func (s *Server) userBets(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !model.ValidAddress(address) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid address", Kind: "validation_error", Field: "address"})
		return
	}

	f := store.BetFilter{
		Status: r.URL.Query().Get("status"),
		Page:   queryInt(r, "page", 1, 1, 1<<30),
		Limit:  queryInt(r, "limit", 20, 1, 100),
	}
	res, err := s.reads.UserBets(r.Context(), address, f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) activeBets(w http.ResponseWriter, r *http.Request) {
	bets, err := s.mgr.ListActiveBets(r.Context(), store.ActiveFilter{
		Token: r.URL.Query().Get("token"),
		Limit: queryInt(r, "limit", 50, 1, 100),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if bets == nil {
		bets = []model.Bet{}
	}
	writeJSON(w, http.StatusOK, dto.ActiveBetsResponse{Bets: bets, Count: len(bets)})
}

func (s *Server) leaderboard(w http.ResponseWriter, r *http.Request) {
	q := stats.LeaderboardQuery{
		Timeframe: queryDefault(r, "timeframe", "all"),
		SortBy:    sortByParam(r),
		Page:      queryInt(r, "page", 1, 1, 1<<30),
		Limit:     queryInt(r, "limit", 50, 1, 100),
	}
	page, err := s.reads.Leaderboard(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) userRank(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !model.ValidAddress(address) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid address", Kind: "validation_error", Field: "address"})
		return
	}
	res, err := s.reads.UserRank(r.Context(), address, queryDefault(r, "timeframe", "all"), sortByParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) globalStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.reads.GlobalStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !model.ValidAddress(address) {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid address", Kind: "validation_error", Field: "address"})
		return
	}
	res, err := s.reads.UserStats(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) tokenStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.reads.TokenStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// updatePreferences requires proof of wallet control.
func (s *Server) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json", Kind: "validation_error"})
		return
	}
	if err := s.guard.Verify(req.Address, req.Signature, req.Message); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.mgr.UpdatePreferences(r.Context(), req.Address, req.Preferences, req.Referrer); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func queryDefault(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

// sortByParam falls back to win rate on unknown values, mirroring the
// leaderboard's default ordering.
func sortByParam(r *http.Request) store.SortBy {
	s := store.SortBy(queryDefault(r, "sortBy", string(store.SortWinRate)))
	if !store.ValidSortBy(s) {
		return store.SortWinRate
	}
	return s
}

func queryInt(r *http.Request, key string, def, min, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}
