package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/ic60led/internal/diagnostics"
	"github.com/coreman2200/ic60led/internal/illum"
	"github.com/coreman2200/ic60led/internal/keymap"
	"github.com/coreman2200/ic60led/internal/led"
)

// Controls is the part of led.Controller the server drives.
type Controls interface {
	Enable(led uint8)
	Disable(led uint8)
	Lock(led uint8)
	Unlock(led uint8)
	SetLayer(layer uint8)
	SetBacklight(level uint8)
	KeyToLEDIndex(code keymap.Keycode) uint8
	ReportHostLEDs(report, current led.HostLEDs)
	ObserveLayerState(state uint32)
	Stats() led.Stats
}

var _ Controls = (*led.Controller)(nil)

// Request is one control message.
type Request struct {
	Op      string `json:"op"`
	LED     uint8  `json:"led,omitempty"`
	Key     uint16 `json:"key,omitempty"`
	Layer   uint8  `json:"layer,omitempty"`
	Level   uint8  `json:"level,omitempty"`
	Report  uint8  `json:"report,omitempty"`
	Current uint8  `json:"current,omitempty"`
	State   uint32 `json:"state,omitempty"` // layer bitmap for layer_state
}

type Reply struct {
	OK    bool   `json:"ok"`
	Op    string `json:"op"`
	LED   uint8  `json:"led,omitempty"`
	Level *uint8 `json:"level,omitempty"`
	Error string `json:"error,omitempty"`
}

// FrameMsg is pushed to /frames clients.
type FrameMsg struct {
	ID         uint64          `json:"id"`
	Frame      illum.Frame     `json:"frame"`
	Blink      illum.BlinkMask `json:"blink"`
	Brightness uint8           `json:"brightness"`
}

type Health struct {
	Status      string            `json:"status"`
	Stats       led.Stats         `json:"stats"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
}

type State struct {
	ctrl Controls
	log  zerolog.Logger

	// opMu serializes the backlight stepper and layer tracking, which belong
	// to one goroutine.
	opMu      sync.Mutex
	backlight *led.Backlight

	mu      sync.Mutex
	last    *FrameMsg
	frameID uint64
	clients map[*websocket.Conn]chan FrameMsg
}

// NewState serves ctrl. A nil backlight starts a stepper at the brightest
// level without sending anything.
func NewState(ctrl Controls, backlight *led.Backlight, log zerolog.Logger) *State {
	if backlight == nil {
		backlight = led.NewBacklight(ctrl, led.MaxBacklightLevel)
	}
	return &State{
		ctrl:      ctrl,
		backlight: backlight,
		log:       log.With().Str("component", "ws").Logger(),
		clients:   map[*websocket.Conn]chan FrameMsg{},
	}
}

// Routes registers the handlers on a new mux.
func (s *State) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/control", s.HandleControlWS)
	mux.HandleFunc("/frames", s.HandleFramesWS)
	return mux
}

// Publish hands a frame to every /frames client. Clients that have not
// taken the previous frame get only the newest one. It never blocks.
func (s *State) Publish(snap illum.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameID++
	msg := FrameMsg{ID: s.frameID, Frame: snap.Frame, Blink: snap.Blink, Brightness: snap.Brightness}
	s.last = &msg
	for _, ch := range s.clients {
		offer(ch, msg)
	}
}

func offer(ch chan FrameMsg, msg FrameMsg) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Stats()
	h := Health{Status: "ok", Stats: st, Diagnostics: diag.FromStats(st)}
	for _, d := range h.Diagnostics {
		if d.Severity != diag.Info {
			h.Status = "degraded"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("control client gone")
			}
			return
		}
		rep := s.apply(req)
		if !rep.OK {
			s.log.Warn().Str("op", req.Op).Str("error", rep.Error).Msg("control request rejected")
		}
		_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteJSON(rep); err != nil {
			return
		}
	}
}

func (s *State) apply(req Request) Reply {
	rep := Reply{OK: true, Op: req.Op, LED: req.LED}
	switch req.Op {
	case "enable":
		s.ctrl.Enable(req.LED)
	case "disable":
		s.ctrl.Disable(req.LED)
	case "lock":
		s.ctrl.Lock(req.LED)
	case "unlock":
		s.ctrl.Unlock(req.LED)
	case "lock_key", "unlock_key":
		rep.LED = s.ctrl.KeyToLEDIndex(keymap.Keycode(req.Key))
		if rep.LED == keymap.NoLED {
			return Reply{Op: req.Op, Error: fmt.Sprintf("key 0x%04X not in keymap", req.Key)}
		}
		if req.Op == "lock_key" {
			s.ctrl.Lock(rep.LED)
		} else {
			s.ctrl.Unlock(rep.LED)
		}
	case "layer":
		s.ctrl.SetLayer(req.Layer)
	case "backlight", "backlight_up", "backlight_down", "backlight_toggle":
		rep.Level = s.stepBacklight(req.Op, req.Level)
	case "layer_state":
		s.opMu.Lock()
		s.ctrl.ObserveLayerState(req.State)
		s.opMu.Unlock()
	case "host_leds":
		s.ctrl.ReportHostLEDs(led.HostLEDs(req.Report), led.HostLEDs(req.Current))
	default:
		return Reply{Op: req.Op, Error: "unknown op"}
	}
	return rep
}

// stepBacklight runs a backlight op and returns the level now shown.
func (s *State) stepBacklight(op string, level uint8) *uint8 {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	b := s.backlight
	switch op {
	case "backlight":
		b.Set(level)
	case "backlight_up":
		b.Increase()
	case "backlight_down":
		b.Decrease()
	case "backlight_toggle":
		b.Toggle()
	}
	shown := b.Level()
	if !b.Enabled() {
		shown = 0
	}
	return &shown
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ch := make(chan FrameMsg, 1)
	s.mu.Lock()
	s.clients[conn] = ch
	if s.last != nil {
		ch <- *s.last
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		select {
		case <-done:
			return
		case msg := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
