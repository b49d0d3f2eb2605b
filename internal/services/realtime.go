package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/desertthunder/onlyhub/internal/shared"
)

const (
	realtimePath     = "/realtime/v1/websocket"
	realtimeVSN      = "1.0.0"
	defaultHeartbeat = 25 * time.Second
	writeTimeout     = 10 * time.Second

	eventJoin      = "phx_join"
	eventLeave     = "phx_leave"
	eventReply     = "phx_reply"
	eventError     = "phx_error"
	eventClose     = "phx_close"
	eventHeartbeat = "heartbeat"
	eventChanges   = "postgres_changes"
	topicPhoenix   = "phoenix"
)

// ChangeEvent describes one row change on a watched table.
type ChangeEvent struct {
	Type            string `json:"type"` // INSERT, UPDATE or DELETE
	Schema          string `json:"schema"`
	Table           string `json:"table"`
	CommitTimestamp string `json:"commit_timestamp"`
}

type phxMessage struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
	JoinRef string          `json:"join_ref,omitempty"`
}

type phxReply struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

// RealtimeOpts configures [Client.ConnectRealtime].
type RealtimeOpts struct {
	Heartbeat time.Duration
	Dialer    *websocket.Dialer
	Logger    *log.Logger
}

// Realtime is one websocket connection multiplexing channel subscriptions.
type Realtime struct {
	conn      *websocket.Conn
	logger    *log.Logger
	heartbeat time.Duration
	token     string

	writeMu sync.Mutex
	mu      sync.Mutex
	topics  map[string]*Channel

	ref       atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once
}

// RealtimeURL derives the websocket endpoint for the project.
func (c *Client) RealtimeURL() (string, error) {
	u, err := url.Parse(c.baseURL + realtimePath)
	if err != nil {
		return "", fmt.Errorf("failed to parse realtime url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"apikey": {c.anonKey}, "vsn": {realtimeVSN}}.Encode()
	return u.String(), nil
}

// ConnectRealtime opens the realtime websocket and starts its reader and heartbeat goroutines.
func (c *Client) ConnectRealtime(ctx context.Context, opts RealtimeOpts) (*Realtime, error) {
	endpoint, err := c.RealtimeURL()
	if err != nil {
		return nil, err
	}

	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect realtime: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = c.logger
	}

	heartbeat := opts.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	rt := &Realtime{
		conn:      conn,
		logger:    shared.WithLogger(logger, "component", "realtime"),
		heartbeat: heartbeat,
		topics:    make(map[string]*Channel),
		done:      make(chan struct{}),
	}
	if c.bearer() != c.anonKey {
		rt.token = c.bearer()
	}

	go rt.readLoop()
	go rt.heartbeatLoop()
	return rt, nil
}

// Channel is a joined topic delivering change events.
//
// Events is buffered by one. Events arriving while one is still pending are merged into it, so a
// slow consumer sees at most one pending notification per channel.
type Channel struct {
	rt      *Realtime
	topic   string
	joinRef string
	events  chan ChangeEvent
	joined  chan phxReply

	closeOnce sync.Once
	closed    bool
}

// Topic returns the full channel topic, e.g. realtime:banners-changes.
func (ch *Channel) Topic() string { return ch.topic }

// Events delivers change notifications until the channel or connection closes.
func (ch *Channel) Events() <-chan ChangeEvent { return ch.events }

// Close leaves the topic. It is safe to call more than once.
func (ch *Channel) Close() error {
	var err error
	ch.closeOnce.Do(func() {
		ch.rt.detach(ch)
		if !ch.rt.isClosed() {
			err = ch.rt.send(ch.topic, eventLeave, map[string]any{}, ch.joinRef)
		}
	})
	return err
}

// Subscribe joins topic for postgres changes of every event type on schema.table and waits for the server to accept.
func (r *Realtime) Subscribe(ctx context.Context, topic, schema, table string) (*Channel, error) {
	if r.isClosed() {
		return nil, fmt.Errorf("realtime connection closed")
	}

	ch := &Channel{
		rt:      r,
		topic:   "realtime:" + topic,
		joinRef: r.nextRef(),
		events:  make(chan ChangeEvent, 1),
		joined:  make(chan phxReply, 1),
	}

	r.mu.Lock()
	if _, exists := r.topics[ch.topic]; exists {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: already subscribed to %s", shared.ErrInvalidArgument, ch.topic)
	}
	r.topics[ch.topic] = ch
	r.mu.Unlock()

	config := map[string]any{
		"config": map[string]any{
			"broadcast": map[string]any{"self": false},
			"presence":  map[string]any{"key": ""},
			"postgres_changes": []map[string]string{
				{"event": "*", "schema": schema, "table": table},
			},
		},
	}
	if r.token != "" {
		config["access_token"] = r.token
	}

	if err := r.send(ch.topic, eventJoin, config, ch.joinRef); err != nil {
		r.detach(ch)
		return nil, err
	}

	select {
	case reply, ok := <-ch.joined:
		if !ok {
			return nil, fmt.Errorf("realtime connection closed while joining %s", ch.topic)
		}
		if reply.Status != "ok" {
			r.detach(ch)
			return nil, fmt.Errorf("failed to join %s: status %s: %s", ch.topic, reply.Status, string(reply.Response))
		}
	case <-ctx.Done():
		r.detach(ch)
		return nil, ctx.Err()
	}

	r.logger.Debug("joined channel", "topic", ch.topic, "table", table)
	return ch, nil
}

// Close shuts the connection down, ending every channel's event stream.
func (r *Realtime) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		r.writeMu.Lock()
		_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = r.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		r.writeMu.Unlock()
		err = r.conn.Close()
	})
	return err
}

// Done is closed once the connection has been closed by either side.
func (r *Realtime) Done() <-chan struct{} { return r.done }

func (r *Realtime) isClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Realtime) nextRef() string {
	return strconv.FormatUint(r.ref.Add(1), 10)
}

func (r *Realtime) send(topic, event string, payload any, joinRef string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	msg := phxMessage{Topic: topic, Event: event, Payload: data, Ref: r.nextRef(), JoinRef: joinRef}
	if event == eventJoin {
		msg.Ref = joinRef
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := r.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", event, err)
	}
	return nil
}

// detach removes ch from the dispatch table and ends its event stream.
func (r *Realtime) detach(ch *Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.topics[ch.topic]; ok && current == ch {
		delete(r.topics, ch.topic)
	}
	if !ch.closed {
		ch.closed = true
		close(ch.events)
		close(ch.joined)
	}
}

func (r *Realtime) heartbeatLoop() {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.send(topicPhoenix, eventHeartbeat, map[string]any{}, ""); err != nil {
				r.logger.Warn("heartbeat failed", "error", err)
			}
		}
	}
}

func (r *Realtime) readLoop() {
	defer r.shutdown()

	for {
		var msg phxMessage
		if err := r.conn.ReadJSON(&msg); err != nil {
			if !r.isClosed() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				r.logger.Warn("realtime connection lost", "error", err)
			}
			return
		}
		r.dispatch(msg)
	}
}

func (r *Realtime) dispatch(msg phxMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.topics[msg.Topic]
	if !ok {
		return
	}

	switch msg.Event {
	case eventReply:
		if msg.Ref != ch.joinRef {
			return
		}
		var reply phxReply
		if err := json.Unmarshal(msg.Payload, &reply); err != nil {
			reply.Status = "error"
		}
		select {
		case ch.joined <- reply:
		default:
		}
	case eventChanges:
		var payload struct {
			Data ChangeEvent `json:"data"`
		}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			r.logger.Warn("malformed change payload", "topic", msg.Topic, "error", err)
			return
		}
		payload.Data.Type = strings.ToUpper(payload.Data.Type)
		select {
		case ch.events <- payload.Data:
		default:
		}
	case eventError, eventClose:
		r.logger.Warn("channel closed by server", "topic", msg.Topic, "event", msg.Event)
	}
}

// shutdown marks the connection closed and ends every channel.
func (r *Realtime) shutdown() {
	r.closeOnce.Do(func() {
		close(r.done)
		r.conn.Close()
	})

	r.mu.Lock()
	channels := make([]*Channel, 0, len(r.topics))
	for _, ch := range r.topics {
		channels = append(channels, ch)
	}
	r.mu.Unlock()

	for _, ch := range channels {
		r.detach(ch)
	}
}
