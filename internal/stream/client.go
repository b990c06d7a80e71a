package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const eventBufferSize = 64

type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	Header           http.Header
}

func DefaultSettings() Settings {
	return Settings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Client speaks the log receiver protocol over one websocket connection.
// Inbound messages are decoded on a reader goroutine and delivered on Events;
// Send queues a request for the writer goroutine.
type Client struct {
	url      string
	conn     *websocket.Conn
	settings Settings

	ctx    context.Context
	cancel context.CancelFunc

	send   chan []byte
	events chan Event

	closeOnce sync.Once
}

// Dial opens the connection and starts the reader and writer.
func Dial(ctx context.Context, url string, settings Settings) (*Client, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: settings.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, url, settings.Header)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	return newClient(ctx, url, conn, settings), nil
}

func newClient(ctx context.Context, url string, conn *websocket.Conn, settings Settings) *Client {
	cancelCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		url:      url,
		conn:     conn,
		settings: settings,
		ctx:      cancelCtx,
		cancel:   cancel,
		send:     make(chan []byte, eventBufferSize),
		events:   make(chan Event, eventBufferSize),
	}

	go c.write()
	go c.read()

	return c
}

func (c *Client) URL() string {
	return c.url
}

// Events is closed after the connection ends. The last event before that is
// ConnectionClosed or ConnectionFailed unless Close was called.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) Send(req Request) error {
	data, err := Encode(req)
	if err != nil {
		return err
	}

	if c.ctx.Err() != nil {
		return errors.Errorf("send %s: connection closed", req.Command())
	}

	select {
	case <-c.ctx.Done():
		return errors.Errorf("send %s: connection closed", req.Command())
	case c.send <- data:
		log.WithField("cmd", req.Command()).Debug("queued request")
		return nil
	}
}

func (c *Client) RequestHosts() error {
	return c.Send(HostsRequest{})
}

func (c *Client) Subscribe(req SubscribeRequest) error {
	return c.Send(req)
}

func (c *Client) RequestHistory(req HistoryRequest) error {
	return c.Send(req)
}

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(c.settings.WriteTimeout)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			log.Debugf("close frame: %v", werr)
		}
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write() {
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.send:
			if err := c.writeMessage(data); err != nil {
				// a failed write leaves the connection unusable
				log.Errorf("write to %s: %v", c.url, err)
				c.conn.Close()
				return
			}
		}
	}
}

func (c *Client) writeMessage(data []byte) error {
	if c.settings.WriteTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.settings.WriteTimeout)); err != nil {
			return errors.Wrap(err, "set write deadline")
		}
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) read() {
	defer close(c.events)

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			c.emit(c.terminalEvent(err))
			c.cancel()
			return
		}

		if messageType != websocket.TextMessage {
			log.Debugf("ignoring message type %d", messageType)
			continue
		}

		ev, err := Decode(data)
		if err != nil {
			log.WithError(err).Warn("dropping message")
			continue
		}
		if !c.emit(ev) {
			return
		}
	}
}

func (c *Client) emit(ev Event) bool {
	select {
	case <-c.ctx.Done():
		return false
	case c.events <- ev:
		return true
	}
}

func (c *Client) terminalEvent(err error) Event {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return ConnectionClosed{
			Clean:  closeErr.Code != websocket.CloseAbnormalClosure,
			Code:   closeErr.Code,
			Reason: closeErr.Text,
		}
	}
	return ConnectionFailed{Err: errors.Wrapf(err, "read from %s", c.url)}
}
