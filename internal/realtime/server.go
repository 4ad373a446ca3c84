package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/staffhub/internal/apperr"
	"github.com/lalith-99/staffhub/internal/auth"
	"github.com/lalith-99/staffhub/internal/middleware"
	"github.com/lalith-99/staffhub/internal/models"
	"github.com/lalith-99/staffhub/internal/observ"
	"github.com/lalith-99/staffhub/internal/service"
	"go.uber.org/zap"
)

// MessageSender persists a message on behalf of a caller.
type MessageSender interface {
	Send(ctx context.Context, caller auth.Identity, in service.SendInput) (*models.MessageView, error)
}

// MembershipChecker answers whether an employee belongs to a room.
type MembershipChecker interface {
	IsMember(ctx context.Context, tenantID, roomID, userID uuid.UUID) (bool, error)
}

// Options tunes each connection.
type Options struct {
	// AllowedOrigins empty means same-origin only; "*" allows any origin.
	AllowedOrigins []string
	SendRate       float64
	SendBurst      int
	SendBuffer     int
}

// Dependencies bundles what the websocket server needs.
type Dependencies struct {
	Hub      *Hub
	Broker   Broker
	Messages MessageSender
	Rooms    MembershipChecker
	Options  Options
	Logger   *zap.Logger
	Metrics  *observ.Metrics
}

// Server upgrades requests to websocket connections and runs the chat
// protocol on them.
type Server struct {
	hub      *Hub
	broker   Broker
	messages MessageSender
	rooms    MembershipChecker
	opts     Options
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *observ.Metrics
}

func NewServer(deps Dependencies) *Server {
	opts := deps.Options
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.SendRate <= 0 {
		opts.SendRate = 5
	}
	if opts.SendBurst <= 0 {
		opts.SendBurst = 10
	}

	return &Server{
		hub:      deps.Hub,
		broker:   deps.Broker,
		messages: deps.Messages,
		rooms:    deps.Rooms,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}
}

// checkOrigin returns nil for an empty list, which makes gorilla fall back
// to its same-origin check.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Handle is the gin handler for GET /ws. It must run behind
// middleware.WebSocketAuth and blocks until the connection ends.
func (s *Server) Handle(c *gin.Context) {
	identity := middleware.GetIdentity(c)

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	s.serve(c.Request.Context(), conn, identity)
}

func (s *Server) serve(parent context.Context, conn *websocket.Conn, identity auth.Identity) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	client := newClient(conn, identity, s.opts, s.logger)
	s.hub.Register(client)
	s.metrics.ConnectionOpened()
	client.logger.Debug("realtime connection opened")

	defer func() {
		s.hub.Remove(client)
		client.close()
		s.metrics.ConnectionClosed()
		client.logger.Debug("realtime connection closed")
	}()

	go client.writeLoop()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			s.reject(client, "", apperr.Validation("malformed frame", nil))
			continue
		}
		s.dispatch(ctx, client, env)
	}
}

func (s *Server) dispatch(ctx context.Context, client *Client, env Envelope) {
	switch env.Event {
	case EventJoinUserChannel:
		s.joinUser(client, env.Data)
	case EventJoinRoomChannel:
		s.joinRoom(ctx, client, env.Data)
	case EventSendMessage:
		s.send(ctx, client, env.Data)
	default:
		s.reject(client, "", apperr.Validation("unknown event "+env.Event, nil))
	}
}

func (s *Server) joinUser(client *Client, data json.RawMessage) {
	userID, err := decodeID(data)
	if err != nil {
		s.reject(client, "", apperr.Field("userId", "must be a uuid"))
		return
	}
	if userID != client.identity.UserID {
		s.reject(client, "", apperr.Forbidden("cannot join another employee's channel"))
		return
	}

	s.hub.Join(client, UserChannel(client.identity.TenantID, userID))
	s.ack(client, "user", userID)
}

func (s *Server) joinRoom(ctx context.Context, client *Client, data json.RawMessage) {
	roomID, err := decodeID(data)
	if err != nil {
		s.reject(client, "", apperr.Field("roomId", "must be a uuid"))
		return
	}

	member, err := s.rooms.IsMember(ctx, client.identity.TenantID, roomID, client.identity.UserID)
	if err != nil {
		s.reject(client, "", err)
		return
	}
	if !member {
		s.reject(client, "", apperr.Forbidden("not a member of this room"))
		return
	}

	s.hub.Join(client, RoomChannel(client.identity.TenantID, roomID))
	s.ack(client, "room", roomID)
}

// sendPayload is the strict wire shape of a sendMessage event.
type sendPayload struct {
	Content   string     `json:"content"`
	Sender    uuid.UUID  `json:"sender"`
	Room      *uuid.UUID `json:"room,omitempty"`
	Recipient *uuid.UUID `json:"recipient,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func (s *Server) send(ctx context.Context, client *Client, data json.RawMessage) {
	if !client.limiter.Allow() {
		s.reject(client, "rate_limited", apperr.Validation("sending too fast", nil))
		return
	}

	var p sendPayload
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		s.reject(client, "", apperr.Validation("invalid message data", nil))
		return
	}

	view, err := s.messages.Send(ctx, client.identity, service.SendInput{
		Content:   p.Content,
		Sender:    p.Sender,
		Room:      p.Room,
		Recipient: p.Recipient,
		Timestamp: p.Timestamp,
	})
	if err != nil {
		s.reject(client, "", err)
		return
	}

	if err := s.Publish(ctx, client.identity.TenantID, view, client); err != nil {
		// The message is stored; recipients recover it from history.
		client.logger.Warn("fanout failed", zap.Int64("message_id", view.ID), zap.Error(err))
	}
}

// Publish fans a stored message out. Room messages go to the room channel.
// Direct messages go to the recipient's inbox and back to the origin
// connection; with no origin (a REST send) they go to the sender's inbox
// instead.
func (s *Server) Publish(ctx context.Context, tenantID uuid.UUID, view *models.MessageView, origin *Client) error {
	frame, err := Encode(EventMessageDelivered, view)
	if err != nil {
		return err
	}

	if view.Room != nil {
		return s.broker.Publish(ctx, Fanout{Channel: RoomChannel(tenantID, *view.Room), Frame: frame})
	}
	if view.Recipient == nil {
		return errors.New("message has no address")
	}

	recipient := UserChannel(tenantID, view.Recipient.ID)
	if origin != nil {
		origin.enqueue(frame)
		return s.broker.Publish(ctx, Fanout{Channel: recipient, Frame: frame, Skip: origin.id})
	}

	sender := UserChannel(tenantID, view.Sender.ID)
	if err := s.broker.Publish(ctx, Fanout{Channel: sender, Frame: frame}); err != nil {
		return err
	}
	if recipient == sender {
		return nil
	}
	return s.broker.Publish(ctx, Fanout{Channel: recipient, Frame: frame})
}

// MessageSent adapts Publish for callers outside a websocket connection.
func (s *Server) MessageSent(ctx context.Context, tenantID uuid.UUID, view *models.MessageView) error {
	return s.Publish(ctx, tenantID, view, nil)
}

func (s *Server) ack(client *Client, channel string, id uuid.UUID) {
	frame, err := Encode(EventJoined, joinedPayload{Channel: channel, ID: id})
	if err != nil {
		client.logger.Error("encode ack", zap.Error(err))
		return
	}
	client.enqueue(frame)
}

// reject reports err to the originating connection only. metricKind
// overrides the error kind label when non-empty.
func (s *Server) reject(client *Client, metricKind string, err error) {
	appErr := apperr.From(err)
	if metricKind == "" {
		metricKind = string(appErr.Kind)
	}
	s.metrics.SendFailed(metricKind)
	if appErr.Kind == apperr.KindPersistence {
		client.logger.Error("realtime request failed", zap.Error(err))
	}

	frame, encErr := Encode(EventSendError, errorPayload{Error: appErr.Public(), Details: appErr.Details})
	if encErr != nil {
		client.logger.Error("encode error", zap.Error(encErr))
		return
	}
	client.enqueue(frame)
}

// decodeID reads a channel id sent as a JSON string.
func decodeID(data json.RawMessage) (uuid.UUID, error) {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}
