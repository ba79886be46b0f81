package game

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const outboxSize = 256

// Player bridges one websocket connection and the session actor: the
// read pump forwards decoded packets into the session inbox, the write
// pump drains the outbox onto the wire.
type Player struct {
	id        string
	limiter   *rate.Limiter
	outbox    chan []byte
	pingChan  chan struct{}
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       zerolog.Logger

	roomChan chan<- envelope
	removeMe chan<- string
}

func NewPlayer(id string, log zerolog.Logger) *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		id:        id,
		limiter:   rate.NewLimiter(5, 10),
		outbox:    make(chan []byte, outboxSize),
		pingChan:  make(chan struct{}, 1),
		ctx:       ctx,
		cancelCtx: cancel,
		log:       log.With().Str("player", id).Logger(),
	}
}

func (p *Player) ID() string {
	return p.id
}

// attach wires the player to the session's channels. Must happen before
// the pumps start.
func (p *Player) attach(s *Session) {
	p.roomChan = s.inbox
	p.removeMe = s.removals
}

// Send queues an event for delivery without ever blocking the session.
func (p *Player) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	select {
	case p.outbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (p *Player) Ping() error {
	select {
	case p.pingChan <- struct{}{}:
	default:
	}
	return nil
}

func (p *Player) CancelAndRelease() {
	p.cancelCtx()
}

// ReadPump consumes the connection until it errors or the player is
// released, forwarding well-formed packets to the session. Guesses and
// chat-rate actions are rate limited; strokes are not, they are already
// gated by the artist check.
func (p *Player) ReadPump(conn Conn) {
	defer func() {
		conn.Close()
		p.cancelCtx()
		p.requestRemoval()
	}()

	for {
		data, err := conn.Read()
		if err != nil {
			return
		}
		var packet ClientPacket
		if err := json.Unmarshal(data, &packet); err != nil {
			p.log.Debug().Msg("dropping malformed packet")
			continue
		}
		if packet.Type != PacketDrawStroke && !p.limiter.Allow() {
			continue
		}
		select {
		case p.roomChan <- envelope{from: p.id, packet: packet}:
		case <-p.ctx.Done():
			return
		}
	}
}

// WritePump owns all writes to the connection. On release it drains
// whatever is already queued (the roomFull rejection arrives this way)
// before closing.
func (p *Player) WritePump(conn Conn) {
	defer conn.Close()
	for {
		select {
		case data := <-p.outbox:
			if err := conn.Write(data); err != nil {
				p.requestRemoval()
				return
			}
		case <-p.pingChan:
			if err := conn.Ping(); err != nil {
				p.requestRemoval()
				return
			}
		case <-p.ctx.Done():
			for {
				select {
				case data := <-p.outbox:
					if err := conn.Write(data); err != nil {
						return
					}
				default:
					return
				}
			}
		}
	}
}

func (p *Player) requestRemoval() {
	if p.removeMe == nil {
		return
	}
	select {
	case p.removeMe <- p.id:
	default:
	}
}
