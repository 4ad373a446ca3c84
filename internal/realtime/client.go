package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lalith-99/staffhub/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Client is one websocket connection. Only writeLoop writes data frames
// to conn; everyone else goes through enqueue.
type Client struct {
	id       string
	conn     *websocket.Conn
	identity auth.Identity
	send     chan []byte
	done     chan struct{}
	once     sync.Once
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func newClient(conn *websocket.Conn, identity auth.Identity, opts Options, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, opts.SendBuffer),
		done:     make(chan struct{}),
		limiter:  rate.NewLimiter(rate.Limit(opts.SendRate), opts.SendBurst),
		logger:   logger.With(zap.String("conn_id", id), zap.String("user_id", identity.UserID.String())),
	}
}

// enqueue never blocks. A closed client or a full queue drops the frame.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn("outbound queue full, dropping frame")
		return false
	}
}

// close is safe to call from any goroutine, any number of times.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(writeWait))
			_ = c.conn.Close()
		}
	})
}

// writeLoop drains the queue and keeps the connection alive with pings.
// A failed write closes the client, which also ends the read loop.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("write failed", zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}
