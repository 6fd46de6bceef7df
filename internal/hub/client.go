package hub

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/VRPawn/internal/runner"
	"github.com/soar/VRPawn/internal/xr"
)

const maxMessageSize = 64 << 10

// Controller receives what clients report. runner.Runner implements it.
type Controller interface {
	StartSession()
	EndSession()
	SourcesChanged(events []xr.SourceEvent)
	Submit(f runner.Frame)
}

// Client represents a connected WebSocket client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		logger: logger,
	}
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for msg := range c.send {
		err := c.conn.WriteMessage(websocket.TextMessage, msg)
		if err != nil {
			break
		}
	}
}

// ReadPump reads messages from the WebSocket and forwards them to ctrl.
// Malformed messages are logged and dropped.
func (c *Client) ReadPump(ctrl Controller) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read failed", zap.Error(err))
			}
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.logger.Warn("error parsing client message", zap.Error(err))
			continue
		}
		if err := Dispatch(&clientMsg, ctrl); err != nil {
			c.logger.Warn("client message dropped", zap.String("type", clientMsg.Type), zap.Error(err))
		}
	}
}

// UnknownTypeError reports a client message of an unsupported type.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return "unknown message type " + e.Type
}

// Dispatch applies one client message to ctrl.
func Dispatch(msg *ClientMessage, ctrl Controller) error {
	switch msg.Type {
	case TypeSessionStart:
		ctrl.StartSession()
	case TypeSessionEnd:
		ctrl.EndSession()
	case TypeInputSources:
		ctrl.SourcesChanged(msg.SourceEvents())
	case TypeFrame:
		f, err := msg.Frame()
		if err != nil {
			return err
		}
		ctrl.Submit(f)
	default:
		return &UnknownTypeError{Type: msg.Type}
	}
	return nil
}
