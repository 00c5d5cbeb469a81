package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/orientation_computer/internal/config"
	"github.com/relabs-tech/orientation_computer/internal/imu"
	"github.com/relabs-tech/orientation_computer/internal/orientation"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The tools are served on the local network only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one websocket update.
type streamMessage struct {
	Type   string            `json:"type"` // "pose" or "imu"
	Pose   *orientation.Pose `json:"pose,omitempty"`
	Sample *imu.Sample       `json:"imu,omitempty"`
}

// webState keeps the latest pose and sample and fans updates out to the
// websocket clients.
type webState struct {
	mu         sync.RWMutex
	lastPose   orientation.Pose
	havePose   bool
	lastSample imu.Sample
	haveSample bool
	clients    map[chan streamMessage]struct{}
}

func newWebState() *webState {
	return &webState{clients: make(map[chan streamMessage]struct{})}
}

func (s *webState) setPose(p orientation.Pose) {
	s.mu.Lock()
	s.lastPose, s.havePose = p, true
	s.mu.Unlock()
	s.broadcast(streamMessage{Type: "pose", Pose: &p})
}

func (s *webState) setSample(smp imu.Sample) {
	s.mu.Lock()
	s.lastSample, s.haveSample = smp, true
	s.mu.Unlock()
	s.broadcast(streamMessage{Type: "imu", Sample: &smp})
}

// broadcast drops the message for clients that are not keeping up.
func (s *webState) broadcast(m streamMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.clients {
		select {
		case ch <- m:
		default:
		}
	}
}

func (s *webState) subscribe() chan streamMessage {
	ch := make(chan streamMessage, 16)
	s.mu.Lock()
	s.clients[ch] = struct{}{}
	s.mu.Unlock()
	return ch
}

func (s *webState) unsubscribe(ch chan streamMessage) {
	s.mu.Lock()
	delete(s.clients, ch)
	s.mu.Unlock()
}

// RunWeb subscribes to the producer topics and serves them over HTTP.
func RunWeb() error {
	cfg := config.Get()
	state := newWebState()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicPose, state.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMU, state.setSample); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.WithField("addr", addr).Info("web server listening")
	srv := &http.Server{
		Addr:              addr,
		Handler:           state.routes("web"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *webState) routes(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orientation", s.handleOrientation)
	mux.HandleFunc("/api/imu", s.handleIMU)
	mux.HandleFunc("/ws", s.handleStream)
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	return mux
}

func (s *webState) handleOrientation(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	pose, ok := s.lastPose, s.havePose
	s.mu.RUnlock()
	writeLatest(w, pose, ok)
}

func (s *webState) handleIMU(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	smp, ok := s.lastSample, s.haveSample
	s.mu.RUnlock()
	writeLatest(w, smp, ok)
}

func writeLatest(w http.ResponseWriter, v interface{}, ok bool) {
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("json encode error")
	}
}

// handleStream pushes every pose and sample to a websocket client until it
// goes away.
func (s *webState) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("web: websocket upgrade error")
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	// Reads only detect the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case m := <-ch:
			conn.SetWriteDeadline(time.Now().Add(time.Second))
			if err := conn.WriteJSON(m); err != nil {
				log.WithError(err).Debug("web: websocket client gone")
				return
			}
		}
	}
}
