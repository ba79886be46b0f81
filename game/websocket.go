package game

import (
	"time"

	"github.com/gorilla/websocket"
)

// Conn abstracts the websocket so pumps can be tested against a mock.
type Conn interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Ping() error
	Close()
}

type websocketConn struct {
	socket *websocket.Conn
}

func NewWebsocketConn(conn *websocket.Conn) Conn {
	conn.SetReadDeadline(time.Now().Add(time.Minute))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(time.Minute))
		return nil
	})
	return &websocketConn{socket: conn}
}

func (wc *websocketConn) Read() ([]byte, error) {
	_, p, err := wc.socket.ReadMessage()
	return p, err
}

func (wc *websocketConn) Write(data []byte) error {
	wc.socket.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return wc.socket.WriteMessage(websocket.TextMessage, data)
}

func (wc *websocketConn) Ping() error {
	return wc.socket.WriteMessage(websocket.PingMessage, nil)
}

func (wc *websocketConn) Close() {
	wc.socket.SetWriteDeadline(time.Now().Add(time.Second))
	wc.socket.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	wc.socket.Close()
}
