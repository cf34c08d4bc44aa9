package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/jonboulle/clockwork"
)

func newTestServer(t *testing.T) (*Server, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 12, 15, 19, 32, 5, 0, time.Local))
	srv := NewServer(NewStore(clock), NewBroadcaster(), nil)
	t.Cleanup(srv.Close)
	return srv, clock
}

func do(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestPageRoutes(t *testing.T) {
	srv, _ := newTestServer(t)

	pages := map[string]string{
		"/":                "Let's try some cool stuff",
		"/clock-of-clocks": "Clock of Clocks",
		"/timers/abc123":   "Time’s Up!",
		"/timers/new":      "Time’s Up!",
	}
	for path, want := range pages {
		w := do(srv, "GET", path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
			t.Fatalf("%s: expected text/html, got %s", path, ct)
		}
		if !strings.Contains(w.Body.String(), want) {
			t.Fatalf("%s: page does not contain %q", path, want)
		}
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/cells.js", "/clock.js", "/timer.js", "/home.js", "/style.css"} {
		if w := do(srv, "GET", path, ""); w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestListDemos(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/api/demos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var list []Demo
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != len(demos) || list[0].Slug != "clock-of-clocks" {
		t.Fatalf("unexpected catalog %+v", list)
	}
}

func TestDemoBlurbWithoutGemini(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/api/demos/pomodoro/blurb", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Text string `json:"text"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Text != "Pomodoro Timer with looping alarm and 'Time’s Up' dialog." {
		t.Fatalf("expected static info text, got %q", resp.Text)
	}

	// A cached blurb wins over the static text.
	srv.store.SaveBlurb("pomodoro", "Generated.")
	w = do(srv, "GET", "/api/demos/pomodoro/blurb", "")
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Text != "Generated." {
		t.Fatalf("expected cached blurb, got %q", resp.Text)
	}

	if w := do(srv, "GET", "/api/demos/gallery/blurb", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown demo: expected 404, got %d", w.Code)
	}
}

func TestClockEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/api/clock", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var frame clockFrame
	json.NewDecoder(w.Body).Decode(&frame)
	want := clockface.Time{Hours: "07", Minutes: "32", Seconds: "05"}
	if frame.Time != want {
		t.Fatalf("expected %s, got %s", want, frame.Time)
	}
	if len(frame.Cells) != 6 || frame.Cells[0][0] != (clockface.RotationPair{0, 90}) {
		t.Fatalf("unexpected cells %v", frame.Cells)
	}
}

func TestClockImage(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/api/clock.png", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Fatalf("invalid png: %v", err)
	}
}

func TestDigitsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/api/digits/1a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Cells [][clockface.CellCount]clockface.RotationPair `json:"cells"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Cells) != 2 {
		t.Fatalf("expected 2 grids, got %d", len(resp.Cells))
	}
	if resp.Cells[0][3] != clockface.BlankRotation {
		t.Fatalf("digit 1 cell 3 should be blank, got %v", resp.Cells[0][3])
	}
	for _, pair := range resp.Cells[1] {
		if pair != clockface.BlankRotation {
			t.Fatal("unknown digit should render blank")
		}
	}

	if w := do(srv, "GET", "/api/digits/123456789", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("too long: expected 400, got %d", w.Code)
	}
}

func TestStopwatchFlow(t *testing.T) {
	srv, clock := newTestServer(t)

	w := do(srv, "POST", "/api/timers", `{"kind":"stopwatch"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create timer: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var st TimerState
	json.NewDecoder(w.Body).Decode(&st)
	if st.ID == "" || st.Kind != KindStopwatch || st.Running {
		t.Fatalf("unexpected new timer %+v", st)
	}

	sub := srv.sse.Register(st.ID)
	defer srv.sse.Unregister(sub)

	w = do(srv, "POST", "/api/timers/"+st.ID+"/toggle", "")
	if w.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", w.Code)
	}
	clock.Advance(2500 * time.Millisecond)

	w = do(srv, "GET", "/api/timers/"+st.ID, "")
	json.NewDecoder(w.Body).Decode(&st)
	if !st.Running || st.Millis != 2500 || st.Reading.Digits() != "000250" {
		t.Fatalf("unexpected running state %+v", st)
	}

	w = do(srv, "POST", "/api/timers/"+st.ID+"/reset", "")
	json.NewDecoder(w.Body).Decode(&st)
	if st.Running || st.Millis != 0 {
		t.Fatalf("unexpected reset state %+v", st)
	}

	// toggle and reset were both broadcast.
	if n := len(sub.ch); n != 2 {
		t.Fatalf("expected 2 timer events, got %d", n)
	}

	if w := do(srv, "POST", "/api/timers/"+st.ID+"/mode", `{"mode":"focus"}`); w.Code != http.StatusConflict {
		t.Fatalf("mode on stopwatch: expected 409, got %d", w.Code)
	}
}

func TestPomodoroMode(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "POST", "/api/timers", `{"kind":"pomodoro"}`)
	var st TimerState
	json.NewDecoder(w.Body).Decode(&st)

	w = do(srv, "POST", "/api/timers/"+st.ID+"/mode", `{"mode":"long"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("set mode: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	json.NewDecoder(w.Body).Decode(&st)
	if st.Mode != "long" || st.Reading.Digits() != "1500" || len(st.Cells) != 4 {
		t.Fatalf("unexpected state %+v", st)
	}

	if w := do(srv, "POST", "/api/timers/"+st.ID+"/mode", `{"mode":"nap"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad mode: expected 400, got %d", w.Code)
	}
	if w := do(srv, "POST", "/api/timers/"+st.ID+"/mode", `not json`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad body: expected 400, got %d", w.Code)
	}
}

func TestCreateTimerValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, body := range []string{`{}`, `{"kind":"hourglass"}`, `nope`} {
		if w := do(srv, "POST", "/api/timers", body); w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestUnknownTimer(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/api/timers/nonexistent"},
		{"POST", "/api/timers/nonexistent/toggle"},
		{"POST", "/api/timers/nonexistent/reset"},
		{"POST", "/api/timers/nonexistent/mode"},
		{"GET", "/api/timers/nonexistent/events"},
	} {
		if w := do(srv, tc.method, tc.path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestTimerEventsSendSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "POST", "/api/timers", `{"kind":"pomodoro"}`)
	var st TimerState
	json.NewDecoder(w.Body).Decode(&st)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/timers/" + st.ID + "/events")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var evt struct {
		Type  string     `json:"type"`
		State TimerState `json:"state"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &evt); err != nil {
		t.Fatalf("decode event %q: %v", line, err)
	}
	if evt.Type != "timer_state" || evt.State.ID != st.ID || evt.State.Reading.Digits() != "2500" {
		t.Fatalf("unexpected snapshot %+v", evt)
	}
}

func TestListTimersEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	do(srv, "POST", "/api/timers", `{"kind":"stopwatch"}`)
	do(srv, "POST", "/api/timers", `{"kind":"pomodoro"}`)

	w := do(srv, "GET", "/api/timers", "")
	var list []TimerState
	json.NewDecoder(w.Body).Decode(&list)
	if len(list) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(list))
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)

	w := do(srv, "GET", "/", "")

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for key, expected := range headers {
		if got := w.Header().Get(key); got != expected {
			t.Errorf("header %s: expected %q, got %q", key, expected, got)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(3, time.Second)
	defer rl.stop()

	// First 3 should pass.
	for i := range 3 {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	// 4th should be blocked.
	if rl.allow("1.2.3.4") {
		t.Fatal("4th request should be rate limited")
	}

	// Different IP should still be allowed.
	if !rl.allow("5.6.7.8") {
		t.Fatal("different IP should be allowed")
	}
}

func TestRateLimiterStop(t *testing.T) {
	rl := newRateLimiter(1, time.Second)
	rl.stop()
	rl.stop() // should not panic

	select {
	case <-rl.done:
	default:
		t.Fatal("cleanup loop still running after stop")
	}
}

func TestCreateTimerRateLimited(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := range 10 {
		if w := do(srv, "POST", "/api/timers", `{"kind":"stopwatch"}`); w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i+1, w.Code)
		}
	}
	if w := do(srv, "POST", "/api/timers", `{"kind":"stopwatch"}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}
