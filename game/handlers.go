package game

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type Handler struct {
	session  *Session
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(session *Session, allowedOrigins map[string]bool, log zerolog.Logger) *Handler {
	return &Handler{
		session: session,
		log:     log.With().Str("component", "handler").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return allowedOrigins[r.Header.Get("Origin")]
			},
		},
	}
}

// ServeWS upgrades the connection and joins the session. Joining is
// implicit on connect; a full room is told so over the socket and then
// disconnected.
func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", ctx.ClientIP()).Msg("websocket upgrade failed")
		return
	}
	sock := NewWebsocketConn(conn)

	player := NewPlayer(uuid.NewString(), h.log)
	player.attach(h.session)
	go player.WritePump(sock)

	if err := h.session.RequestJoin(ctx.Request.Context(), player); err != nil {
		// the rejection event is already in the outbox; release lets
		// the write pump drain it before closing the socket
		player.CancelAndRelease()
		return
	}
	go player.ReadPump(sock)
}
