package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"PairPull/internal/domain/models"
	drepo "PairPull/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a QuoteStream backed by the Alpaca market-data
// WebSocket. It is monitoring-only: quotes feed the last-price gauges and
// never influence the daily cycle.
type Client struct {
	apiKey         string
	secretKey      string
	streamURL      string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new Alpaca quote stream.
func New(apiKey, secretKey, streamURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.QuoteStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		apiKey:         apiKey,
		secretKey:      secretKey,
		streamURL:      streamURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection and authenticates.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.streamURL, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.conn = conn

	auth := map[string]string{"action": "auth", "key": c.apiKey, "secret": c.secretKey}
	if err := conn.WriteJSON(auth); err != nil {
		_ = conn.Close()
		return fmt.Errorf("stream auth: %w", err)
	}

	c.connected = true
	log.Printf("stream: connected")
	return nil
}

// Subscribe subscribes to trade ticks for the configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("stream not connected")
	}
	msg := map[string]interface{}{"action": "subscribe", "trades": c.symbols}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %v: %w", c.symbols, err)
	}
	log.Printf("stream: subscribed %v", c.symbols)
	return nil
}

type wsTick struct {
	T string    `json:"T"` // message type, "t" for trades
	S string    `json:"S"`
	P float64   `json:"p"`
	Z float64   `json:"s"`
	D time.Time `json:"t"`
}

// Read streams Quote events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var frames []wsTick
				if err := json.Unmarshal(b, &frames); err != nil {
					// ignore control frames
					continue
				}
				for _, f := range frames {
					if f.T != "t" {
						continue
					}
					q := &models.Quote{Symbol: f.S, Price: f.P, Volume: f.Z, Timestamp: f.D.Unix()}
					select {
					case quotes <- q:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
