// Package gateway is the client side of the room WebSocket gateway. It sends
// commands that resolve on a server ack, streams pushed events, and keeps the
// connection alive across drops with exponential backoff.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/naveenspark/arena/pkg/domain"
)

// Synthetic events published by the client itself.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Event is a server push (or a synthetic connect/disconnect).
type Event struct {
	Name string
	Data json.RawMessage
}

// envelope is the single JSON frame shape used in both directions.
type envelope struct {
	Event string          `json:"event"`
	Ack   string          `json:"ack,omitempty"`
	OK    bool            `json:"ok,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AckError is a negative acknowledgement from the server.
type AckError struct {
	Command string
	Code    string
	Message string
}

func (e *AckError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s rejected: %s", e.Command, e.Code)
	}
	return fmt.Sprintf("%s rejected: %s", e.Command, e.Message)
}

// Unwrap maps the ack code onto the domain error taxonomy.
func (e *AckError) Unwrap() error { return domain.ErrorForCode(e.Code) }

// Options configures a gateway client.
type Options struct {
	URL        string
	Token      string
	Dialer     *websocket.Dialer
	Logger     *zap.Logger
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// MaxRetries bounds each reconnect attempt series; 0 retries forever.
	MaxRetries uint64
}

// Client is a reconnecting gateway connection.
type Client struct {
	opts Options
	log  *zap.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan envelope

	writeMu sync.Mutex

	events    *Fanout
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the gateway and starts the read/reconnect loop. Events are
// only delivered to subscribers, so the connect from Dial itself is seen by
// nobody; later reconnects publish EventConnect.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MinBackoff <= 0 {
		opts.MinBackoff = 500 * time.Millisecond
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = 15 * time.Second
	}
	log := opts.Logger.Named("gateway")
	c := &Client{
		opts:    opts,
		log:     log,
		pending: make(map[string]chan envelope),
		events:  NewFanout(log),
		done:    make(chan struct{}),
	}
	if err := c.connect(ctx); err != nil {
		return nil, fmt.Errorf("gateway.Dial: %w", err)
	}
	go c.run()
	return c, nil
}

// Subscribe streams server pushes received from now on. Every subscriber gets
// its own copy of each event. The channel is closed by cancel or once the
// client shuts down.
func (c *Client) Subscribe() (events <-chan Event, cancel func()) {
	return c.events.Subscribe()
}

// Connected reports whether a live connection exists right now.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Emit sends a command and blocks until the server acks it, ctx expires, or
// the connection drops. A positive ack's data is decoded into reply when
// reply is non-nil.
func (c *Client) Emit(ctx context.Context, command string, payload any, reply any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("gateway.Emit %s: marshal: %w", command, err)
	}
	ackID := uuid.NewString()
	ch := make(chan envelope, 1)

	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return fmt.Errorf("gateway.Emit %s: %w", command, domain.ErrSocketUnavailable)
	}
	c.pending[ackID] = ch
	c.mu.Unlock()
	defer c.forget(ackID)

	frame, err := json.Marshal(envelope{Event: command, Ack: ackID, Data: data})
	if err != nil {
		return fmt.Errorf("gateway.Emit %s: marshal: %w", command, err)
	}
	if err := c.write(conn, websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("gateway.Emit %s: %w: %v", command, domain.ErrSocketUnavailable, err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("gateway.Emit %s: %w", command, ctx.Err())
	case <-c.done:
		return fmt.Errorf("gateway.Emit %s: %w", command, domain.ErrSocketUnavailable)
	case ack, ok := <-ch:
		if !ok {
			return fmt.Errorf("gateway.Emit %s: connection lost: %w", command, domain.ErrSocketUnavailable)
		}
		if !ack.OK {
			return &AckError{Command: command, Code: ack.Code, Message: ack.Error}
		}
		if reply != nil && len(ack.Data) > 0 {
			if err := json.Unmarshal(ack.Data, reply); err != nil {
				return fmt.Errorf("gateway.Emit %s: decode ack: %w", command, err)
			}
		}
		return nil
	}
}

// Close shuts the connection down for good.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn != nil {
			c.write(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")) //nolint:errcheck // best-effort close frame
			err = conn.Close()
		}
	})
	return err
}

func (c *Client) connect(ctx context.Context) error {
	b := retry.NewExponential(c.opts.MinBackoff)
	b = retry.WithJitterPercent(10, b)
	b = retry.WithCappedDuration(c.opts.MaxBackoff, b)
	if c.opts.MaxRetries > 0 {
		b = retry.WithMaxRetries(c.opts.MaxRetries, b)
	}

	return retry.Do(ctx, b, func(ctx context.Context) error {
		select {
		case <-c.done:
			return errors.New("gateway closed")
		default:
		}
		header := http.Header{}
		if c.opts.Token != "" {
			header.Set("Authorization", "Bearer "+c.opts.Token)
		}
		conn, resp, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, header)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusUnauthorized {
				return domain.ErrAuthRequired
			}
			c.log.Debug("dial failed", zap.String("url", c.opts.URL), zap.Error(err))
			return retry.RetryableError(err)
		}
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		return nil
	})
}

// run owns the connection lifecycle: read until the socket breaks, then
// reconnect until Close.
func (c *Client) run() {
	defer c.events.Close()
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()

		stopPing := make(chan struct{})
		go c.pingLoop(conn, stopPing)
		c.readPump(conn)
		close(stopPing)
		c.drop(conn)

		select {
		case <-c.done:
			return
		default:
		}
		c.publish(Event{Name: EventDisconnect})

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			select {
			case <-c.done:
				cancel()
			case <-ctx.Done():
			}
		}()
		err := c.connect(ctx)
		cancel()
		if err != nil {
			c.log.Warn("reconnect abandoned", zap.Error(err))
			return
		}
		c.log.Info("reconnected", zap.String("url", c.opts.URL))
		c.publish(Event{Name: EventConnect})
	}
}

func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("gateway read failed", zap.Error(err))
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.log.Warn("malformed frame", zap.Error(err))
			continue
		}
		if env.Event == "ack" {
			c.resolve(env)
			continue
		}
		c.publish(Event{Name: env.Event, Data: env.Data})
	}
}

func (c *Client) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write(conn, websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(conn *websocket.Conn, messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
	return conn.WriteMessage(messageType, data)
}

func (c *Client) resolve(ack envelope) {
	c.mu.Lock()
	ch, ok := c.pending[ack.Ack]
	delete(c.pending, ack.Ack)
	c.mu.Unlock()
	if !ok {
		c.log.Debug("ack for unknown command", zap.String("ack", ack.Ack))
		return
	}
	ch <- ack
}

func (c *Client) forget(ackID string) {
	c.mu.Lock()
	delete(c.pending, ackID)
	c.mu.Unlock()
}

// drop clears the dead connection and fails every command waiting on it.
func (c *Client) drop(conn *websocket.Conn) {
	conn.Close() //nolint:errcheck
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	pending := c.pending
	c.pending = make(map[string]chan envelope)
	c.mu.Unlock()
	for _, ch := range pending {
		close(ch)
	}
}

func (c *Client) publish(ev Event) {
	select {
	case <-c.done:
		return
	default:
	}
	c.events.Publish(ev)
}
