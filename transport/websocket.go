package transport

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// MaxMessageSize bounds one inbound message.
const MaxMessageSize = 64 << 10

var ErrMessageTooLarge = errors.New("message too large")

// Handler consumes decoded messages of one connection.
type Handler interface {
	Handle(connID string, msg any)
	Disconnect(connID string)
}

// Websocket serializes every write to conn, including control replies sent
// from the read side.
type Websocket struct {
	conn net.Conn
	lock sync.Mutex
}

func NewWebsocket(conn net.Conn) *Websocket {
	return &Websocket{conn: conn}
}

// ReadMessage returns one of the race inbound message structs.
func (s *Websocket) ReadMessage() (any, error) {
	msg, err := s.readText()
	if err != nil {
		return nil, err
	}
	return DecodeMessage(msg)
}

func (s *Websocket) readText() ([]byte, error) {
	control := wsutil.ControlFrameHandler(s.conn, ws.StateServerSide)
	handle := func(h ws.Header, r io.Reader) error {
		s.lock.Lock()
		defer s.lock.Unlock()
		return control(h, r)
	}
	rd := wsutil.Reader{
		Source:         s.conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		MaxFrameSize:   MaxMessageSize,
		OnIntermediate: handle,
	}
	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := handle(hdr, &rd); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode&ws.OpText == 0 {
			if err := rd.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		msg, err := io.ReadAll(io.LimitReader(&rd, MaxMessageSize+1))
		if err != nil {
			return nil, err
		}
		if len(msg) > MaxMessageSize {
			return nil, ErrMessageTooLarge
		}
		return msg, nil
	}
}

func (s *Websocket) WriteFrame(frame Frame) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return wsutil.WriteServerText(s.conn, frame.Payload)
}

// writeFrames drains the connection queue until the hub closes it.
func (s *Websocket) writeFrames(c *Connection, logger connLogger) {
	defer s.conn.Close()
	for frame := range c.Frames() {
		if err := s.WriteFrame(frame); err != nil {
			logger.WriteFailed(frame.Type, err)
			return
		}
	}
}

// ServeWebsocket upgrades the request and pumps messages between the client
// and handler until either side goes away.
func ServeWebsocket(hub *Hub, handler Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			LogErrorWhileUpgradingHTTP(err)
			return
		}
		defer conn.Close()

		socket := NewWebsocket(conn)
		c := hub.Register()
		logger := getConnLogger(r.RemoteAddr, c.ID)
		logger.Connected()

		written := make(chan struct{})
		go func() {
			socket.writeFrames(c, logger)
			close(written)
		}()

		for {
			msg, err := socket.ReadMessage()
			if err != nil {
				if errors.Is(err, ErrUndefinedType) || errors.Is(err, ErrMalformedMessage) {
					logger.SkippedMessage(err)
					continue
				}
				if errors.Is(err, ErrMessageTooLarge) || errors.Is(err, wsutil.ErrFrameTooLarge) {
					logger.Oversized(err)
				}
				break
			}
			handler.Handle(c.ID, msg)
		}

		handler.Disconnect(c.ID)
		hub.Unregister(c.ID)
		<-written
		logger.Disconnected()
	}
}
