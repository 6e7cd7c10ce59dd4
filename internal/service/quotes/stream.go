package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"FxPilot/internal/domain/models"
	drepo "FxPilot/internal/domain/repository"
	"FxPilot/pkg/logger"
	"FxPilot/pkg/util"

	"github.com/gorilla/websocket"
)

// Config describes the websocket quote feed. Symbols maps provider symbols
// (e.g. "OANDA:EUR_USD") to internal ones ("EURUSD").
type Config struct {
	URL            string
	APIKey         string
	Symbols        map[string]string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Stream is a TickStream over a trade websocket.
type Stream struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *logger.Logger

	mu        sync.RWMutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected bool
}

var _ drepo.TickStream = (*Stream)(nil)

func NewStream(cfg Config, log *logger.Logger) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &Stream{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		log:    log.With(logger.String("component", "quotes")),
	}
}

func (s *Stream) Connect(ctx context.Context) error {
	u, err := url.Parse(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("quotes url: %w", err)
	}
	if s.cfg.APIKey != "" {
		q := u.Query()
		q.Set("token", s.cfg.APIKey)
		u.RawQuery = q.Encode()
	}

	conn, _, err := s.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("quotes connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.log.Info("connected", logger.String("host", u.Host))
	return nil
}

// Subscribe subscribes to every configured provider symbol.
func (s *Stream) Subscribe(_ context.Context) error {
	conn := s.current()
	if conn == nil {
		return fmt.Errorf("quotes not connected")
	}
	for provider := range s.cfg.Symbols {
		if err := s.write(conn, func(c *websocket.Conn) error {
			return c.WriteJSON(map[string]string{"type": "subscribe", "symbol": provider})
		}); err != nil {
			return fmt.Errorf("subscribe %s: %w", provider, err)
		}
		s.log.Debug("subscribed", logger.String("symbol", provider))
	}
	return nil
}

type wireTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"`
}

type wireMessage struct {
	Type string      `json:"type"`
	Data []wireTrade `json:"data"`
}

// Read streams ticks from the current connection. Both channels close when
// the connection fails or ctx is done; call Read again after Reconnect.
func (s *Stream) Read(ctx context.Context) (<-chan models.Tick, <-chan error) {
	ticks := make(chan models.Tick, 1024)
	errs := make(chan error, 1)
	conn := s.current()
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if conn != nil {
					_ = s.write(conn, func(c *websocket.Conn) error {
						return c.WriteMessage(websocket.PingMessage, nil)
					})
				}
			}
		}
	}()

	go func() {
		defer close(done)
		defer close(ticks)
		defer close(errs)
		if conn == nil {
			errs <- fmt.Errorf("quotes not connected")
			return
		}
		for {
			if ctx.Err() != nil {
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("quotes read: %w", err)
				return
			}
			for _, t := range s.decode(b) {
				select {
				case ticks <- t:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// decode parses one frame. Non-trade frames and unknown symbols yield nothing.
func (s *Stream) decode(b []byte) []models.Tick {
	var m wireMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
		return nil
	}
	out := make([]models.Tick, 0, len(m.Data))
	for _, d := range m.Data {
		symbol, ok := s.cfg.Symbols[d.S]
		if !ok {
			continue
		}
		out = append(out, models.Tick{
			Symbol: symbol,
			Time:   util.FromUnixAuto(d.T),
			Price:  d.P,
			Volume: d.V,
		})
	}
	return out
}

// Reconnect closes the connection, waits the reconnect delay and dials again.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.cfg.ReconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

func (s *Stream) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.connected = false
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *Stream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *Stream) current() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// write serialises writers; gorilla allows one concurrent writer per conn.
func (s *Stream) write(conn *websocket.Conn, fn func(*websocket.Conn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return fn(conn)
}
