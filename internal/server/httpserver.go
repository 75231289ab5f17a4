package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"battleship/internal/app"
	"battleship/internal/codec"
	"battleship/internal/game"
)

// Server exposes one Controller as a JSON API. All access to the controller
// happens under mu, including the deferred turn switch posted by task.
type Server struct {
	mu   sync.Mutex
	ctrl *app.Controller
	log  *log.Logger
	task app.Task

	startAt int64
}

func New(ctrl *app.Controller, logger *log.Logger) *Server {
	return &Server{
		ctrl:    ctrl,
		log:     logger,
		startAt: time.Now().UnixMilli(),
	}
}

func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/select", s.post(s.handleSelect))
	mux.HandleFunc("/v1/orientation", s.post(s.handleOrientation))
	mux.HandleFunc("/v1/place", s.post(s.handlePlace))
	mux.HandleFunc("/v1/autoplace", s.post(s.handleAutoPlace))
	mux.HandleFunc("/v1/ready", s.post(s.handleReady))
	mux.HandleFunc("/v1/fire", s.post(s.handleFire))
	mux.HandleFunc("/v1/newgame", s.post(s.handleNewGame))
	mux.HandleFunc("/v1/verify", s.post(s.handleVerify))
}

// Close cancels a pending turn switch or return to selection.
func (s *Server) Close() {
	if s.task.Cancel() {
		s.log.Debug("pending action cancelled on shutdown")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	var inc *game.IncompletePlacementError
	if errors.As(err, &inc) {
		body["remaining"] = inc.Remaining
	}
	writeJSON(w, statusFor(err), body)
}

func statusFor(err error) int {
	var inc *game.IncompletePlacementError
	switch {
	case errors.As(err, &inc),
		errors.Is(err, game.ErrWrongPhase),
		errors.Is(err, game.ErrNotPlacingPlayer),
		errors.Is(err, game.ErrAlreadyShot),
		errors.Is(err, game.ErrTurnPending),
		errors.Is(err, game.ErrFleetComplete),
		errors.Is(err, errProvingOff):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidSelection),
		errors.Is(err, game.ErrInvalidPlacement),
		errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, errBadJSON):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

const maxBody = 1 << 16

var (
	errBadJSON    = errors.New("bad json")
	errProvingOff = errors.New("shot proving disabled")
)

// post wraps a mutating handler: method check, body decode, and the lock.
func (s *Server) post(h func(w http.ResponseWriter, body []byte)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			writeError(w, errBadJSON)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, bytes.TrimSpace(body))
	}
}

func decode(body []byte, v any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errBadJSON
	}
	return nil
}

// runLocked is the post function for the deferred task: the action runs on
// whichever goroutine fires the timer, serialized with the handlers.
func (s *Server) runLocked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// === Selection / placement ===

type selectReq struct {
	Ships int `json:"ships"`
}

func (s *Server) handleSelect(w http.ResponseWriter, body []byte) {
	var req selectReq
	if err := decode(body, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.ctrl.SelectCount(req.Ships); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

func (s *Server) handleOrientation(w http.ResponseWriter, _ []byte) {
	o, err := s.ctrl.ToggleOrientation()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orientation": o})
}

type placeReq struct {
	Player int `json:"player"`
	Row    int `json:"row"`
	Col    int `json:"col"`
}

func (s *Server) handlePlace(w http.ResponseWriter, body []byte) {
	var req placeReq
	if err := decode(body, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.ctrl.Click(req.Player, req.Row, req.Col)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"action":     res.Action,
		"ship":       res.Ship,
		"nextLength": s.ctrl.State().NextLength(),
	})
}

func (s *Server) handleAutoPlace(w http.ResponseWriter, _ []byte) {
	if err := s.ctrl.AutoPlace(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

func (s *Server) handleReady(w http.ResponseWriter, _ []byte) {
	if err := s.ctrl.Ready(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

// === Battle ===

type fireReq struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (s *Server) handleFire(w http.ResponseWriter, body []byte) {
	var req fireReq
	if err := decode(body, &req); err != nil {
		writeError(w, err)
		return
	}
	rep, err := s.ctrl.Fire(req.Row, req.Col)
	if err != nil {
		if errors.Is(err, game.ErrAlreadyShot) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":   err.Error(),
				"outcome": rep.Outcome,
				"target":  rep.Target.String(),
			})
			return
		}
		writeError(w, err)
		return
	}

	cfg := s.ctrl.Config()
	if rep.Winner != 0 {
		if cfg.GameOverDelay > 0 {
			s.task.Schedule(cfg.GameOverDelay, s.runLocked, s.ctrl.NewGame)
		}
	} else {
		s.task.Schedule(cfg.TurnDelay, s.runLocked, func() {
			if err := s.ctrl.EndTurn(); err != nil {
				s.log.Warn("turn switch skipped", "err", err)
			}
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attacker":  rep.Attacker,
		"target":    rep.Target.String(),
		"outcome":   rep.Outcome,
		"message":   rep.Outcome.Display(),
		"remaining": rep.Remaining,
		"winner":    rep.Winner,
		"proof":     rep.Proof,
	})
}

type newGameReq struct {
	KeepShips bool `json:"keepShips"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, body []byte) {
	var req newGameReq
	if err := decode(body, &req); err != nil {
		writeError(w, err)
		return
	}
	if s.task.Cancel() {
		s.log.Info("pending action cancelled", "reason", "new game")
	}
	prev := s.ctrl.State().NumShips
	s.ctrl.NewGame()
	if req.KeepShips && prev != 0 {
		if err := s.ctrl.SelectCount(prev); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.statusPayload())
}

// === Verify ===

func (s *Server) handleVerify(w http.ResponseWriter, body []byte) {
	var p codec.ShotProofPayload
	if err := decode(body, &p); err != nil {
		writeError(w, err)
		return
	}
	if !s.ctrl.Config().ProveShots {
		writeError(w, errProvingOff)
		return
	}
	if err := s.ctrl.VerifyShot(&p); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

// === Status ===

func (s *Server) statusPayload() map[string]any {
	st := s.ctrl.State()
	roots := [2]string{}
	for n := 1; n <= 2; n++ {
		if c := s.ctrl.Commitment(n); c != nil {
			roots[n-1] = c.RootHex()
		}
	}

	active := 0
	switch st.Phase {
	case game.PhasePlacing:
		active = st.PlacingPlayer
	case game.PhaseBattle, game.PhaseGameOver:
		active = st.CurrentTurn
	}

	out := map[string]any{
		"startedAt":     s.startAt,
		"id":            st.ID,
		"phase":         st.Phase,
		"numShips":      st.NumShips,
		"shipLengths":   game.BuildShipSet(st.NumShips),
		"placingPlayer": st.PlacingPlayer,
		"orientation":   st.Orientation,
		"nextLength":    st.NextLength(),
		"turn":          st.CurrentTurn,
		"winner":        st.Winner,
		"turnPending":   s.ctrl.TurnPending(),
		"rootHex":       roots,
		"stats":         [2]app.Stats{s.ctrl.Stats(1), s.ctrl.Stats(2)},
	}
	if active != 0 {
		out["view"] = s.ctrl.View(active)
	}
	if vk, err := s.ctrl.VerifyingKey(); err == nil && len(vk) > 0 {
		out["vkB64"] = base64.StdEncoding.EncodeToString(vk)
	}
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.statusPayload())
}

// === CORS ===

func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
