package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rainfall-feature-lab/internal/domain"
	"rainfall-feature-lab/internal/grid"
)

// WSSourceConfig configures gauge-stream client behavior.
type WSSourceConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the exponential reconnect backoff.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// Buffer is the capacity of the delivered readings channel.
	Buffer int
	// OnReconnect, when set, is called after each successful reconnect.
	OnReconnect func()
}

// DefaultWSSourceConfig returns default gauge-stream configuration.
func DefaultWSSourceConfig() WSSourceConfig {
	return WSSourceConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		Buffer:            256,
	}
}

// wsReading is the wire format of one gauge-feed message.
type wsReading struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	Timestamp time.Time `json:"timestamp"`
	PrecipMm  *float64  `json:"precip_mm"`
}

// WSSource streams live gauge readings from a WebSocket feed. It is a
// readings source, not a forecast source: it only ever delivers observed
// hours. Readings arrive on Readings() until Close or context cancel;
// connection drops are retried with exponential backoff and malformed
// messages are logged and skipped.
type WSSource struct {
	endpoint string
	config   WSSourceConfig

	conn   *websocket.Conn
	connMu sync.Mutex

	readings chan *domain.Reading
	done     chan struct{}
	wg       sync.WaitGroup
	closeOne sync.Once
}

// NewWSSource connects to the gauge feed and starts streaming.
func NewWSSource(ctx context.Context, endpoint string, config *WSSourceConfig) (*WSSource, error) {
	cfg := DefaultWSSourceConfig()
	if config != nil {
		cfg = *config
	}

	s := &WSSource{
		endpoint: endpoint,
		config:   cfg,
		readings: make(chan *domain.Reading, cfg.Buffer),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(2)
	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// Readings returns the channel of delivered gauge readings. The channel
// is closed after Close.
func (s *WSSource) Readings() <-chan *domain.Reading {
	return s.readings
}

// Close shuts the stream down and waits for its goroutines to exit.
func (s *WSSource) Close() error {
	s.closeOne.Do(func() { close(s.done) })

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.readings)
	return nil
}

// connect establishes the WebSocket connection.
func (s *WSSource) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial gauge feed %s: %w", s.endpoint, err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	return nil
}

// readLoop reads feed messages and delivers readings until shutdown,
// reconnecting with backoff on connection errors.
func (s *WSSource) readLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()
		if conn == nil {
			if !s.reconnect() {
				return
			}
			continue
		}

		if s.config.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			log.Printf("[ws-source] read error: %v, reconnecting", err)
			if !s.reconnect() {
				return
			}
			continue
		}

		var msg wsReading
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Printf("[ws-source] skipping malformed message: %v", err)
			continue
		}

		reading := &domain.Reading{
			Lat:       grid.RoundCoord(msg.Lat),
			Lon:       grid.RoundCoord(msg.Lon),
			Timestamp: msg.Timestamp.UTC(),
			PrecipMm:  msg.PrecipMm,
		}
		select {
		case s.readings <- reading:
		case <-s.done:
			return
		}
	}
}

// reconnect retries the connection with exponential backoff. Returns
// false when shutdown was requested.
func (s *WSSource) reconnect() bool {
	delay := s.config.ReconnectDelay
	for {
		select {
		case <-s.done:
			return false
		case <-time.After(delay):
		}

		if err := s.connect(context.Background()); err != nil {
			log.Printf("[ws-source] reconnect failed: %v", err)
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			continue
		}
		if s.config.OnReconnect != nil {
			s.config.OnReconnect()
		}
		return true
	}
}

// pingLoop keeps the connection alive.
func (s *WSSource) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			conn := s.conn
			s.connMu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Printf("[ws-source] ping failed: %v", err)
			}
		}
	}
}
