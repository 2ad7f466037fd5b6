// Package remote implements the network half of the cachestore backend
// pair: a JSON-RPC client over a single WebSocket connection.
//
// Every logical operation maps to one RPC method carrying the collection
// name, the operation argument, and the effective sub-options. Requests
// are correlated to responses by a generated id, so independent operations
// can share the connection concurrently.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dalalsunil1986/cachestore"
)

// Config locates the RPC endpoint.
type Config struct {
	URL   string `env:"CACHESTORE_API_URL" envDefault:"ws://localhost:7007/rpc"`
	Token string `env:"CACHESTORE_API_TOKEN"`
}

// ConfigFromEnv reads the configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("remote: parse env: %w", err)
	}
	return cfg, nil
}

// --------------------------------------------------
// Wire format
// --------------------------------------------------

type rpcRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     string `json:"id"`
	Error  *Error `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// Error is a failure reported by the remote API.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote: %s (code %d)", e.Message, e.Code)
}

// --------------------------------------------------
// Client
// --------------------------------------------------

// Client is a [cachestore.Remote] for one collection. It is safe for
// concurrent use. A Client performs a single attempt per call: there are
// no retries, and a call aborted by its context stays in flight on the
// wire but its response is discarded.
type Client struct {
	collection string
	conn       *websocket.Conn
	log        zerolog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *rpcResponse
	closed  bool
	readErr error
	done    chan struct{}

	optsMu   sync.RWMutex
	defaults cachestore.SubOptions
}

var _ cachestore.Remote = (*Client)(nil)

// Option customizes a Client at dial time.
type Option func(*Client)

// WithLogger attaches a logger. The default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// Dial connects to the RPC endpoint and starts the read pump.
func Dial(cfg Config, collection string, opts ...Option) (*Client, error) {
	dialer := websocket.DefaultDialer

	var header http.Header
	if cfg.Token != "" {
		header = http.Header{"Authorization": []string{"Bearer " + cfg.Token}}
	}

	conn, _, err := dialer.Dial(cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("remote: dial %s: %w", cfg.URL, err)
	}

	c := &Client{
		collection: collection,
		conn:       conn,
		log:        zerolog.Nop(),
		pending:    make(map[string]chan *rpcResponse),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("collection", collection).Logger()

	go c.readPump()
	return c, nil
}

// Close sends a close frame and tears down the connection. In-flight
// calls fail with the connection error.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.writeMu.Lock()
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
	c.writeMu.Unlock()
	return c.conn.Close()
}

// readPump delivers responses to their pending calls until the connection
// dies, at which point every pending call is failed with the read error.
func (c *Client) readPump() {
	for {
		var res rpcResponse
		if err := c.conn.ReadJSON(&res); err != nil {
			c.fail(fmt.Errorf("remote: connection lost: %w", err))
			return
		}

		c.mu.Lock()
		ch, ok := c.pending[res.ID]
		delete(c.pending, res.ID)
		c.mu.Unlock()

		if !ok {
			// Response for an abandoned call.
			c.log.Debug().Str("id", res.ID).Msg("dropping unmatched response")
			continue
		}
		ch <- &res
	}
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.readErr = err
	close(c.done)
	c.pending = make(map[string]chan *rpcResponse)
}

// call performs one RPC round trip.
func (c *Client) call(ctx context.Context, method string, params ...any) (any, error) {
	id := uuid.NewString()
	ch := make(chan *rpcResponse, 1)

	c.mu.Lock()
	if c.closed {
		err := c.readErr
		c.mu.Unlock()
		return nil, err
	}
	c.pending[id] = ch
	c.mu.Unlock()

	req := &rpcRequest{ID: id, Method: method, Params: params}
	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("remote: send %s: %w", method, err)
	}

	c.log.Trace().Str("id", id).Str("method", method).Msg("sent")

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("remote: %s: %w", method, ctx.Err())
	case <-c.done:
		c.mu.Lock()
		err := c.readErr
		c.mu.Unlock()
		return nil, err
	case res := <-ch:
		if res.Error != nil {
			return nil, res.Error
		}
		return res.Result, nil
	}
}

// sub resolves the sub-options for one call: a call-site value replaces
// the configured defaults wholesale.
func (c *Client) sub(call cachestore.SubOptions) cachestore.SubOptions {
	if call != nil {
		return call
	}
	c.optsMu.RLock()
	defer c.optsMu.RUnlock()
	if c.defaults != nil {
		return c.defaults
	}
	return cachestore.SubOptions{}
}

func (c *Client) op(ctx context.Context, method string, arg any, call cachestore.SubOptions) (*cachestore.Result, error) {
	result, err := c.call(ctx, method, c.collection, arg, c.sub(call))
	if err != nil {
		return nil, err
	}
	return &cachestore.Result{Value: result, FromNetwork: true}, nil
}

// --------------------------------------------------
// Backend surface
// --------------------------------------------------

func (c *Client) Aggregate(ctx context.Context, spec any, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "aggregate", spec, sub)
}

func (c *Client) Query(ctx context.Context, id string, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "get", id, sub)
}

func (c *Client) QueryWithQuery(ctx context.Context, query any, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "find", query, sub)
}

func (c *Client) Save(ctx context.Context, object any, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "save", object, sub)
}

func (c *Client) Remove(ctx context.Context, object any, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "remove", object, sub)
}

func (c *Client) RemoveWithQuery(ctx context.Context, query any, sub cachestore.SubOptions) (*cachestore.Result, error) {
	return c.op(ctx, "removeByQuery", query, sub)
}

// Configure replaces the client's default sub-options.
func (c *Client) Configure(sub cachestore.SubOptions) {
	c.optsMu.Lock()
	c.defaults = sub
	c.optsMu.Unlock()
}

// Login authenticates against the remote API. Never orchestrated and
// never cached.
func (c *Client) Login(ctx context.Context, credentials any) (*cachestore.Result, error) {
	result, err := c.call(ctx, "login", credentials)
	if err != nil {
		return nil, err
	}
	return &cachestore.Result{Value: result, FromNetwork: true}, nil
}

// Logout invalidates the remote session.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, "logout")
	return err
}
