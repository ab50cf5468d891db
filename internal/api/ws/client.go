package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebDesk/backend/internal/app"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/id"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/types"
	"github.com/GriffinCanCode/WebDesk/backend/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Client is one browser connection
type Client struct {
	id   id.ClientID
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	mu        sync.RWMutex
	done      bool
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   id.NewClientID(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.opts.SendBuffer),
	}
}

// enqueue queues a frame, reporting false when the client cannot keep up
func (c *Client) enqueue(frame []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.done {
		return true
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.done = true
		close(c.send)
		c.mu.Unlock()
	})
}

func (c *Client) reply(eventType string, data interface{}, message string) {
	frame, err := c.hub.encode(eventType, data, message)
	if err != nil {
		c.hub.logger.Error("failed to encode reply", zap.String("type", eventType), zap.Error(err))
		return
	}
	if !c.enqueue(frame) {
		c.close()
		return
	}
	if c.hub.opts.Metrics != nil {
		c.hub.opts.Metrics.RecordWSMessage("out", eventType)
	}
}

func (c *Client) replyError(message string) {
	c.reply(EventError, nil, message)
}

// readPump decodes browser messages until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.String("client_id", c.id.String()), zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			c.replyError("malformed message")
			continue
		}
		if c.hub.opts.Metrics != nil {
			c.hub.opts.Metrics.RecordWSMessage("in", msg.Type)
		}
		c.handle(msg)
	}
}

// writePump drains the send queue and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handle(msg types.WSMessage) {
	switch msg.Type {
	case "ping":
		c.reply(EventPong, nil, "")
	case "snapshot":
		c.reply(EventSnapshot, c.hub.desktop.Snapshot(), "")
	case "unlock_audio":
		if c.hub.opts.Audio != nil {
			c.hub.opts.Audio.Unlock()
		}
		c.reply(EventAudioUnlocked, nil, "")
	case "chat":
		c.handleChat(msg)
	default:
		c.handleIntent(msg)
	}
}

func (c *Client) handleIntent(msg types.WSMessage) {
	kind, err := app.ParseIntentKind(msg.Type)
	if err != nil {
		c.replyError("unknown message type")
		return
	}

	in := app.Intent{Kind: kind, AppID: msg.AppID, X: msg.X, Y: msg.Y}
	switch kind {
	case app.IntentOpen:
		if err := utils.ValidateAppID(msg.AppID); err != nil {
			c.replyError(err.Error())
			return
		}
	case app.IntentToggleStartMenu, app.IntentShutdown:
	default:
		if msg.WindowID == nil {
			c.replyError(string(kind) + " requires window_id")
			return
		}
		in.WindowID = *msg.WindowID
	}
	if kind == app.IntentMove {
		if err := utils.ValidatePosition(msg.X, msg.Y); err != nil {
			c.replyError(err.Error())
			return
		}
	}

	res, err := c.hub.desktop.Apply(in)
	if err != nil {
		if errors.Is(err, app.ErrNotAccepting) {
			c.replyError(app.ErrNotAccepting.Error())
			return
		}
		c.replyError(err.Error())
		return
	}
	c.reply(EventResult, payload{"intent": kind, "result": res}, "")
}

func (c *Client) handleChat(msg types.WSMessage) {
	if msg.WindowID == nil {
		c.replyError("chat requires window_id")
		return
	}
	if err := utils.ValidateText(msg.Message, utils.MaxPromptBytes); err != nil {
		c.replyError(err.Error())
		return
	}
	if !c.hub.desktop.Session.AcceptsInput() {
		c.replyError(app.ErrNotAccepting.Error())
		return
	}
	chat, err := c.hub.desktop.Apps.Chat(*msg.WindowID)
	if err != nil {
		c.replyError(err.Error())
		return
	}
	c.reply(EventResult, payload{"intent": "chat", "result": payload{"success": chat.Send(msg.Message)}}, "")
}
