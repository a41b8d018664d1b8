package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tilt-arcade/internal/motion"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(cfg)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
	})
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server, role Role) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if role != RoleNone {
		send(t, conn, Message{Type: TypeHello, Role: role})
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, m Message) {
	t.Helper()
	if err := conn.WriteJSON(m); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func receive(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m Message
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func f(v float64) *float64 { return &v }

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func metricsBody(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestHostStartWithoutClient(t *testing.T) {
	s, _ := newTestServer(t, Config{StartTimeout: 20 * time.Millisecond})

	err := s.Host().Start(context.Background())
	if !errors.Is(err, ErrNoHostClient) {
		t.Fatalf("Start() error = %v, expected ErrNoHostClient", err)
	}
	if !errors.Is(err, motion.ErrHostUnavailable) {
		t.Error("ErrNoHostClient should wrap motion.ErrHostUnavailable")
	}
}

func TestHostStreamsReadings(t *testing.T) {
	s, ts := newTestServer(t, Config{RefreshRate: 20 * time.Millisecond})
	conn := dial(t, ts, RoleHost)
	host := s.Host()

	if err := host.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	start := receive(t, conn)
	if start.Type != TypeStart || start.RefreshRate != 20 {
		t.Fatalf("expected start with refresh_rate 20, got %+v", start)
	}

	send(t, conn, Message{Type: TypeReading, X: f(1.5), Y: f(-2), Z: f(9.8)})
	eventually(t, "reading", func() bool {
		r := host.Reading()
		return r.X != nil && *r.X == 1.5 && r.Y != nil && *r.Y == -2
	})

	host.Stop()
	if m := receive(t, conn); m.Type != TypeStop {
		t.Errorf("expected stop, got %+v", m)
	}
}

func TestNativePermissionAndEvents(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	conn := dial(t, ts, RoleBrowser)
	native := s.Native()

	if !native.RequiresPermission() {
		t.Fatal("bridge native sensor should require permission")
	}

	type result struct {
		p   motion.Permission
		err error
	}
	done := make(chan result, 1)
	go func() {
		p, err := native.RequestPermission(context.Background())
		done <- result{p, err}
	}()

	if m := receive(t, conn); m.Type != TypeRequestPermission {
		t.Fatalf("expected request_permission, got %+v", m)
	}
	send(t, conn, Message{Type: TypePermission, State: "granted"})

	select {
	case r := <-done:
		if r.err != nil || r.p != motion.PermissionGranted {
			t.Fatalf("RequestPermission() = %v, %v; expected granted", r.p, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("permission request never resolved")
	}

	events := make(chan motion.Event, 4)
	unsubscribe := native.Subscribe(func(ev motion.Event) { events <- ev })

	send(t, conn, Message{Type: TypeMotion, Kind: "orientation", X: f(10), Y: f(20)})
	select {
	case ev := <-events:
		if ev.Kind != motion.KindOrientation || *ev.X != 10 || *ev.Y != 20 {
			t.Errorf("unexpected event %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("motion event not delivered")
	}

	unsubscribe()
	send(t, conn, Message{Type: TypeMotion, Kind: "acceleration", X: f(1), Y: f(1)})
	eventually(t, "second motion counted", func() bool {
		return strings.Contains(metricsBody(t, ts), `bridge_messages_total{type="motion"} 2`)
	})
	select {
	case ev := <-events:
		t.Errorf("event %+v delivered after unsubscribe", ev)
	default:
	}
}

func TestPermissionDeniedByBrowser(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	conn := dial(t, ts, RoleBrowser)

	done := make(chan motion.Permission, 1)
	go func() {
		p, _ := s.Native().RequestPermission(context.Background())
		done <- p
	}()

	receive(t, conn)
	send(t, conn, Message{Type: TypePermission, State: "denied"})

	select {
	case p := <-done:
		if p != motion.PermissionDenied {
			t.Errorf("permission = %v, expected denied", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("permission request never resolved")
	}
}

func TestPermissionTimeout(t *testing.T) {
	s, ts := newTestServer(t, Config{PermissionTimeout: 30 * time.Millisecond})
	conn := dial(t, ts, RoleBrowser)

	done := make(chan error, 1)
	go func() {
		_, err := s.Native().RequestPermission(context.Background())
		done <- err
	}()
	receive(t, conn)

	select {
	case err := <-done:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, expected deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("permission request never timed out")
	}
}

func TestDroppedMessages(t *testing.T) {
	_, ts := newTestServer(t, Config{})

	anon := dial(t, ts, RoleNone)
	send(t, anon, Message{Type: TypeReading, X: f(1), Y: f(1)})

	browser := dial(t, ts, RoleBrowser)
	send(t, browser, Message{Type: TypeReading, X: f(1), Y: f(1)})
	if err := browser.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	send(t, browser, Message{Type: "teleport"})

	eventually(t, "drop counters", func() bool {
		body := metricsBody(t, ts)
		return strings.Contains(body, `bridge_dropped_total{reason="no_hello"} 1`) &&
			strings.Contains(body, `bridge_dropped_total{reason="wrong_role"} 1`) &&
			strings.Contains(body, `bridge_dropped_total{reason="malformed"} 1`) &&
			strings.Contains(body, `bridge_dropped_total{reason="unknown_type"} 1`)
	})
}

func TestRateLimitDropsExcess(t *testing.T) {
	_, ts := newTestServer(t, Config{RateLimit: 1, Burst: 2})
	conn := dial(t, ts, RoleBrowser) // hello takes one token

	for i := 0; i < 5; i++ {
		send(t, conn, Message{Type: TypeMotion, X: f(1), Y: f(1)})
	}

	eventually(t, "rate limit drops", func() bool {
		return strings.Contains(metricsBody(t, ts), `bridge_dropped_total{reason="rate_limit"}`)
	})
}

func TestHealthz(t *testing.T) {
	s, ts := newTestServer(t, Config{})
	dial(t, ts, RoleHost)
	eventually(t, "client registered", func() bool { return s.Clients() == 1 })

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Clients != 1 {
		t.Errorf("healthz = %+v, expected ok with 1 client", body)
	}
}

func TestNormalizerFallsBackToBrowser(t *testing.T) {
	s, ts := newTestServer(t, Config{StartTimeout: 20 * time.Millisecond})
	conn := dial(t, ts, RoleBrowser)

	n := motion.New(motion.Options{Host: s.Host(), Native: s.Native()})
	defer n.Close()

	result := n.RequestMotionAccess(context.Background())

	if m := receive(t, conn); m.Type != TypeRequestPermission {
		t.Fatalf("expected request_permission, got %+v", m)
	}
	send(t, conn, Message{Type: TypePermission, State: "granted"})

	select {
	case ok := <-result:
		if !ok {
			t.Fatal("expected motion enabled through the browser")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("motion access never resolved")
	}
	if st := n.State(); st.Tier != motion.TierNative {
		t.Fatalf("Tier = %v, expected native", st.Tier)
	}

	send(t, conn, Message{Type: TypeMotion, Kind: "acceleration", X: f(2.5), Y: f(-5)})
	eventually(t, "tilt", func() bool {
		sig := n.Sample()
		return sig.TiltX == 0.5 && sig.TiltY == -1
	})
}
