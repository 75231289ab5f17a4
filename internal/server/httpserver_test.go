package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"battleship/internal/app"
)

func newTestServer(t *testing.T, cfg app.Config) (*Server, *httptest.Server) {
	t.Helper()
	ctrl, err := app.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := New(ctrl, log.New(io.Discard))
	mux := http.NewServeMux()
	s.Routes(mux)
	ts := httptest.NewServer(WithCORS(mux))
	t.Cleanup(func() {
		ts.Close()
		s.Close()
	})
	return s, ts
}

func call(t *testing.T, ts *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if resp.StatusCode != http.StatusMethodNotAllowed && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode, out
}

func expect(t *testing.T, ts *httptest.Server, path string, body any, want int) map[string]any {
	t.Helper()
	code, out := call(t, ts, http.MethodPost, path, body)
	if code != want {
		t.Fatalf("POST %s %v = %d %v, want %d", path, body, code, out, want)
	}
	return out
}

// setupBattle places ships of length 1 at A1 and length 2 at B2-C2 for
// both players.
func setupBattle(t *testing.T, ts *httptest.Server) {
	t.Helper()
	expect(t, ts, "/v1/select", map[string]int{"ships": 2}, http.StatusOK)
	for p := 1; p <= 2; p++ {
		expect(t, ts, "/v1/place", map[string]int{"player": p, "row": 0, "col": 0}, http.StatusOK)
		expect(t, ts, "/v1/place", map[string]int{"player": p, "row": 1, "col": 1}, http.StatusOK)
		expect(t, ts, "/v1/ready", nil, http.StatusOK)
	}
}

func TestErrorMapping(t *testing.T) {
	cfg := app.DefaultConfig()
	_, ts := newTestServer(t, cfg)

	if code, _ := call(t, ts, http.MethodGet, "/v1/fire", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/fire = %d", code)
	}
	if code, _ := call(t, ts, http.MethodPost, "/v1/status", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("POST /v1/status = %d", code)
	}
	if code, _ := call(t, ts, http.MethodOptions, "/v1/fire", nil); code != http.StatusNoContent {
		t.Errorf("OPTIONS preflight = %d", code)
	}

	tests := []struct {
		path string
		body any
		want int
	}{
		{"/v1/fire", map[string]int{"row": 0, "col": 0}, http.StatusConflict},
		{"/v1/select", map[string]int{"ships": 7}, http.StatusBadRequest},
		{"/v1/select", "not an object", http.StatusBadRequest},
		{"/v1/select", map[string]int{"ships": 2}, http.StatusOK},
		{"/v1/select", map[string]int{"ships": 3}, http.StatusConflict},
		{"/v1/place", map[string]int{"player": 2, "row": 0, "col": 0}, http.StatusConflict},
		{"/v1/place", map[string]int{"player": 1, "row": 0, "col": 12}, http.StatusBadRequest},
		{"/v1/ready", nil, http.StatusConflict},
		{"/v1/place", map[string]int{"player": 1, "row": 0, "col": 0}, http.StatusOK},
		{"/v1/place", map[string]int{"player": 1, "row": 0, "col": 9}, http.StatusBadRequest},
		{"/v1/verify", map[string]any{}, http.StatusConflict},
	}
	for _, tc := range tests {
		expect(t, ts, tc.path, tc.body, tc.want)
	}

	out := expect(t, ts, "/v1/ready", nil, http.StatusConflict)
	if out["remaining"] != float64(1) {
		t.Errorf("incomplete placement body = %v", out)
	}
}

func TestFireSchedulesTurnSwitch(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.TurnDelay = 100 * time.Millisecond
	_, ts := newTestServer(t, cfg)
	setupBattle(t, ts)

	_, st := call(t, ts, http.MethodGet, "/v1/status", nil)
	if st["phase"] != "battle" || st["turn"] != float64(1) {
		t.Fatalf("status = %v", st)
	}
	roots := st["rootHex"].([]any)
	if roots[0] == "" || roots[1] == "" {
		t.Errorf("fleets not sealed: %v", roots)
	}

	out := expect(t, ts, "/v1/fire", map[string]int{"row": 1, "col": 1}, http.StatusOK)
	if out["outcome"] != "hit" || out["target"] != "B2" || out["message"] != "HIT" {
		t.Errorf("fire = %v", out)
	}
	expect(t, ts, "/v1/fire", map[string]int{"row": 5, "col": 5}, http.StatusConflict)

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, st = call(t, ts, http.MethodGet, "/v1/status", nil)
		if st["turn"] == float64(2) && st["turnPending"] == false {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("turn never switched: %v", st)
		}
		time.Sleep(5 * time.Millisecond)
	}

	view := st["view"].(map[string]any)
	if view["player"] != float64(2) {
		t.Errorf("view of player %v during player 2's turn", view["player"])
	}
	// player 2 was hit at B2; their own board shows it
	own := view["own"].([]any)
	if own[1].([]any)[1] != float64(app.MarkHit) {
		t.Errorf("own view B2 = %v", own[1].([]any)[1])
	}
	target := view["target"].([]any)
	if target[0].([]any)[0] != float64(app.MarkWater) {
		t.Errorf("target view leaks player 1 ships")
	}

	expect(t, ts, "/v1/fire", map[string]int{"row": 9, "col": 9}, http.StatusOK)
	out = expect(t, ts, "/v1/newgame", map[string]bool{"keepShips": true}, http.StatusOK)
	if out["phase"] != "placing" || out["numShips"] != float64(2) || out["turnPending"] != false {
		t.Errorf("newgame keepShips = %v", out)
	}

	// the cancelled switch must not land on the new game
	time.Sleep(200 * time.Millisecond)
	_, st = call(t, ts, http.MethodGet, "/v1/status", nil)
	if st["phase"] != "placing" || st["turn"] != float64(0) {
		t.Errorf("stale turn switch ran: %v", st)
	}
}

func TestAlreadyShotKeepsTurn(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.TurnDelay = time.Millisecond
	s, ts := newTestServer(t, cfg)
	setupBattle(t, ts)

	expect(t, ts, "/v1/fire", map[string]int{"row": 4, "col": 4}, http.StatusOK)
	waitTurn(t, s, 2)
	expect(t, ts, "/v1/fire", map[string]int{"row": 4, "col": 4}, http.StatusOK)
	waitTurn(t, s, 1)

	out := expect(t, ts, "/v1/fire", map[string]int{"row": 4, "col": 4}, http.StatusConflict)
	if out["outcome"] != "already" {
		t.Errorf("already = %v", out)
	}
	_, st := call(t, ts, http.MethodGet, "/v1/status", nil)
	if st["turn"] != float64(1) || st["turnPending"] != false {
		t.Errorf("already-shot consumed the turn: %v", st)
	}
}

func TestVictoryReturnsToSelection(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.TurnDelay = time.Millisecond
	cfg.GameOverDelay = 200 * time.Millisecond
	s, ts := newTestServer(t, cfg)
	expect(t, ts, "/v1/select", map[string]int{"ships": 1}, http.StatusOK)
	expect(t, ts, "/v1/autoplace", nil, http.StatusOK)
	expect(t, ts, "/v1/ready", nil, http.StatusOK)
	expect(t, ts, "/v1/place", map[string]int{"player": 2, "row": 3, "col": 3}, http.StatusOK)
	expect(t, ts, "/v1/ready", nil, http.StatusOK)

	out := expect(t, ts, "/v1/fire", map[string]int{"row": 3, "col": 3}, http.StatusOK)
	if out["outcome"] != "sink" || out["winner"] != float64(1) {
		t.Fatalf("winning shot = %v", out)
	}
	_, st := call(t, ts, http.MethodGet, "/v1/status", nil)
	if st["phase"] != "game_over" || st["winner"] != float64(1) {
		t.Fatalf("status after win = %v", st)
	}
	stats := st["stats"].([]any)[0].(map[string]any)
	if stats["accuracy"] != float64(100) || stats["hits"] != float64(1) {
		t.Errorf("winner stats = %v", stats)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		phase := s.ctrl.State().Phase
		s.mu.Unlock()
		if phase == "selecting" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("never returned to selection, phase %s", phase)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitTurn(t *testing.T, s *Server, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s.mu.Lock()
		turn, pending := s.ctrl.State().CurrentTurn, s.ctrl.TurnPending()
		s.mu.Unlock()
		if turn == want && !pending {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("turn %d never reached", want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
