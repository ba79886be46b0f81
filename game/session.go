package game

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Phase is the session's position in the game lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota // no players connected
	PhaseWaiting           // below quorum
	PhaseStarting          // quorum met, countdown running
	PhaseRoundActive       // artist drawing, timer running
	PhaseRoundEnding       // between rounds
	PhaseGameOver          // terminal
)

// Client is a connected participant as the session sees it: an opaque
// id plus a way to push events at it.
type Client interface {
	ID() string
	Send(ev Event) error
	Ping() error
	CancelAndRelease()
}

// WordDrawer supplies one secret word per round.
type WordDrawer interface {
	Draw() string
}

// SessionConfig carries the game constants. Defaults per DefaultConfig:
// 5 players max, 2 to start, 5 rounds of 120s, 5s between rounds, a
// 5-tick countdown and 10 points per correct guess.
type SessionConfig struct {
	MaxPlayers        int
	MinPlayers        int
	MaxRounds         int
	CountdownFrom     int
	GuessAward        int
	RoundDuration     time.Duration
	InterRoundDelay   time.Duration
	CountdownInterval time.Duration
}

func DefaultConfig() SessionConfig {
	return SessionConfig{
		MaxPlayers:        5,
		MinPlayers:        2,
		MaxRounds:         5,
		CountdownFrom:     5,
		GuessAward:        10,
		RoundDuration:     120 * time.Second,
		InterRoundDelay:   5 * time.Second,
		CountdownInterval: time.Second,
	}
}

type joinRequest struct {
	client  Client
	errChan chan error
}

type envelope struct {
	from   string
	packet ClientPacket
}

type timerKind int

const (
	timerCountdownTick timerKind = iota
	timerRoundExpired
	timerNextRound
)

// timerMsg re-enters the session loop when a scheduled timer fires. gen
// is the round generation the timer was armed under; a stale gen means
// the round it belonged to already ended some other way.
type timerMsg struct {
	gen  uint64
	kind timerKind
}

type sendTask struct {
	to Client
	ev Event
}

// Session is the authoritative state machine for one game. A single
// goroutine (Run) owns every field below the channels; all mutation,
// whether from client packets or timer expiry, is serialized through
// it.
type Session struct {
	cfg    SessionConfig
	log    zerolog.Logger
	words  WordDrawer
	timers TimerFactory

	phase           Phase
	started         bool
	roster          *roster
	clients         map[string]Client
	artistID        string
	secretWord      string
	correctGuessers map[string]struct{}
	roundsPlayed    int
	countdown       int
	gen             uint64
	activeTimer     Timer
	// set when the artist leaves so the replacement round starts with
	// their successor instead of restarting the rotation
	forcedNextArtist string

	inbox       chan envelope
	joinReqs    chan joinRequest
	removals    chan string
	timerFires  chan timerMsg
	pingSignals chan struct{}
	done        chan struct{}

	sendTasks []sendTask
}

func NewSession(cfg SessionConfig, words WordDrawer, timers TimerFactory, log zerolog.Logger) *Session {
	return &Session{
		cfg:             cfg,
		log:             log.With().Str("component", "session").Logger(),
		words:           words,
		timers:          timers,
		phase:           PhaseIdle,
		roster:          newRoster(cfg.MaxPlayers),
		clients:         make(map[string]Client),
		correctGuessers: make(map[string]struct{}),
		inbox:           make(chan envelope, 1024),
		joinReqs:        make(chan joinRequest),
		removals:        make(chan string, 64),
		timerFires:      make(chan timerMsg, 16),
		pingSignals:     make(chan struct{}, 1),
		done:            make(chan struct{}),
	}
}

// Run is the session actor loop. Exactly one goroutine may run it.
func (s *Session) Run(started chan struct{}) {
	close(started)
	for {
		select {
		case req := <-s.joinReqs:
			s.handleJoin(req)
		case env := <-s.inbox:
			s.handlePacket(env)
		case id := <-s.removals:
			s.handleDisconnect(id)
		case m := <-s.timerFires:
			s.handleTimerFire(m)
		case <-s.pingSignals:
			s.handlePing()
		case <-s.done:
			s.cancelActiveTimer()
			for _, c := range s.clients {
				c.CancelAndRelease()
			}
			return
		}
		s.flushSends()
	}
}

// RequestJoin asks the session to admit a client and waits for the
// verdict. ErrRoomFull when at capacity; the roomFull event has already
// been queued to the client by then.
func (s *Session) RequestJoin(ctx context.Context, c Client) error {
	req := joinRequest{client: c, errChan: make(chan error, 1)}
	select {
	case s.joinReqs <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return context.Canceled
	}
	select {
	case err := <-req.errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) Ping() {
	select {
	case s.pingSignals <- struct{}{}:
	default:
	}
}

func (s *Session) Close() {
	close(s.done)
}

func (s *Session) postTimerFire(m timerMsg) {
	select {
	case s.timerFires <- m:
	case <-s.done:
	}
}

// cancelActiveTimer invalidates every outstanding timer: the Cancel
// races the fire, and bumping gen turns any fire that slipped through
// into a no-op.
func (s *Session) cancelActiveTimer() {
	if s.activeTimer != nil {
		s.activeTimer.Cancel()
		s.activeTimer = nil
	}
	s.gen++
}

func (s *Session) schedule(d time.Duration, kind timerKind) {
	s.cancelActiveTimer()
	gen := s.gen
	s.activeTimer = s.timers.NewTimer(d, func() {
		s.postTimerFire(timerMsg{gen: gen, kind: kind})
	})
}

func (s *Session) broadcast(ev Event) {
	for _, c := range s.clients {
		s.sendTasks = append(s.sendTasks, sendTask{to: c, ev: ev})
	}
}

func (s *Session) broadcastExcept(id string, ev Event) {
	for cid, c := range s.clients {
		if cid == id {
			continue
		}
		s.sendTasks = append(s.sendTasks, sendTask{to: c, ev: ev})
	}
}

func (s *Session) sendTo(id string, ev Event) {
	if c, ok := s.clients[id]; ok {
		s.sendTasks = append(s.sendTasks, sendTask{to: c, ev: ev})
	}
}

// flushSends delivers the buffered tasks. A client whose send buffer is
// full gets dropped, which may queue more events, hence the loop.
func (s *Session) flushSends() {
	for len(s.sendTasks) > 0 {
		tasks := s.sendTasks
		s.sendTasks = nil
		failed := make(map[string]Client)
		for _, t := range tasks {
			if err := t.to.Send(t.ev); err != nil {
				failed[t.to.ID()] = t.to
			}
		}
		for id, c := range failed {
			if _, ok := s.clients[id]; !ok {
				continue
			}
			s.log.Warn().Str("player", id).Msg("dropping unresponsive player")
			c.CancelAndRelease()
			s.handleDisconnect(id)
		}
	}
}

func (s *Session) handleJoin(req joinRequest) {
	id := req.client.ID()
	name, err := s.roster.add(id)
	if err != nil {
		s.log.Info().Str("player", id).Msg("join rejected, room full")
		// sent directly so the rejection is queued before the caller
		// learns the join failed and tears the connection down
		req.client.Send(MakeRoomFull())
		req.errChan <- err
		return
	}
	s.clients[id] = req.client
	req.errChan <- nil
	s.log.Info().Str("player", id).Str("name", name).Int("count", s.roster.size()).Msg("player joined")

	if s.phase == PhaseIdle {
		s.phase = PhaseWaiting
	}
	s.broadcast(MakePlayerCount(s.roster.size(), s.cfg.MaxPlayers))

	switch s.phase {
	case PhaseWaiting, PhaseStarting:
		if s.roster.size() >= s.cfg.MinPlayers {
			// a join while counting down restarts the countdown, same
			// as a join that resumes a below-quorum game
			s.beginCountdown()
		} else {
			s.broadcast(MakeWaitingCount(s.roster.size(), s.cfg.MinPlayers))
		}
	}
}

func (s *Session) beginCountdown() {
	s.phase = PhaseStarting
	s.countdown = s.cfg.CountdownFrom
	s.broadcast(MakeCountdownTick(s.countdown))
	s.schedule(s.cfg.CountdownInterval, timerCountdownTick)
}

func (s *Session) handleTimerFire(m timerMsg) {
	if m.gen != s.gen {
		return
	}
	switch m.kind {
	case timerCountdownTick:
		if s.phase != PhaseStarting {
			return
		}
		s.countdown--
		s.broadcast(MakeCountdownTick(s.countdown))
		if s.countdown <= 0 {
			if s.started {
				// resuming after a below-quorum stall keeps the
				// round count where it was
				s.startRound()
			} else {
				s.startGame()
			}
			return
		}
		s.schedule(s.cfg.CountdownInterval, timerCountdownTick)
	case timerRoundExpired:
		if s.phase != PhaseRoundActive {
			return
		}
		s.log.Info().Int("round", s.roundsPlayed+1).Msg("round timed out")
		s.endRound("")
	case timerNextRound:
		if s.phase != PhaseRoundEnding {
			return
		}
		s.startRound()
	}
}

func (s *Session) startGame() {
	s.started = true
	s.roundsPlayed = 0
	s.artistID = ""
	s.broadcast(MakeGameStarted())
	s.log.Info().Int("players", s.roster.size()).Msg("game started")
	s.startRound()
}

// startRound is the single entry point into RoundActive: at game start,
// after each RoundEnding delay, and when the artist leaves mid-round.
func (s *Session) startRound() {
	s.cancelActiveTimer()

	if s.roster.size() == 0 {
		s.log.Warn().Err(ErrNoEligibleArtist).Msg("no players left, session idle")
		s.phase = PhaseIdle
		s.artistID = ""
		s.secretWord = ""
		return
	}
	if s.roster.size() < s.cfg.MinPlayers {
		s.phase = PhaseWaiting
		s.artistID = ""
		s.secretWord = ""
		s.broadcast(MakeWaitingCount(s.roster.size(), s.cfg.MinPlayers))
		return
	}
	if s.roundsPlayed >= s.cfg.MaxRounds {
		s.finishGame()
		return
	}

	clear(s.correctGuessers)
	s.secretWord = s.words.Draw()

	if s.forcedNextArtist != "" {
		if _, ok := s.roster.get(s.forcedNextArtist); ok {
			s.artistID = s.forcedNextArtist
		} else {
			s.artistID = s.roster.nextArtist(s.artistID)
		}
		s.forcedNextArtist = ""
	} else {
		s.artistID = s.roster.nextArtist(s.artistID)
	}

	artist, _ := s.roster.get(s.artistID)
	round := s.roundsPlayed + 1
	s.phase = PhaseRoundActive

	s.log.Info().Str("artist", artist.name).Int("round", round).Str("word", s.secretWord).Msg("round started")

	s.broadcast(MakeCanvasCleared())
	s.broadcast(MakeRoundStarted(artist.name, round))
	s.sendTo(s.artistID, MakeArtistAssigned(s.secretWord))
	s.broadcast(MakePlayerCount(s.roster.size(), s.cfg.MaxPlayers))

	s.schedule(s.cfg.RoundDuration, timerRoundExpired)
}

func (s *Session) handlePacket(env envelope) {
	switch env.packet.Type {
	case PacketSubmitGuess:
		var guess GuessPayload
		if err := json.Unmarshal(env.packet.Data, &guess); err != nil {
			return
		}
		s.handleGuess(env.from, guess.Text)
	case PacketDrawStroke:
		s.handleStroke(env.from, env.packet)
	case PacketClearCanvas:
		s.handleClear(env.from)
	default:
		s.log.Debug().Str("type", env.packet.Type).Msg("unknown packet type dropped")
	}
}

func (s *Session) handleGuess(from, text string) {
	if s.phase != PhaseRoundActive {
		return
	}
	if from == s.artistID {
		s.sendTo(from, MakeGuessRejected(ErrArtistGuess.Error()))
		return
	}
	if _, already := s.correctGuessers[from]; already {
		return
	}
	entry, ok := s.roster.get(from)
	if !ok {
		return
	}

	if strings.EqualFold(text, s.secretWord) {
		s.correctGuessers[from] = struct{}{}
		newScore := s.roster.addScore(from, s.cfg.GuessAward)
		s.broadcast(MakeGuessCorrect(entry.name, newScore))
		s.log.Info().Str("player", entry.name).Int("score", newScore).Msg("correct guess")
		if len(s.correctGuessers) == s.roster.size()-1 {
			s.endRound(from)
		}
		return
	}
	s.broadcast(MakeGuessWrong(entry.name, text))
}

// handleStroke relays stroke data verbatim to everyone but the sender.
// Off-turn strokes are dropped without feedback.
func (s *Session) handleStroke(from string, packet ClientPacket) {
	if s.phase != PhaseRoundActive || from != s.artistID {
		return
	}
	s.broadcastExcept(from, MakeStrokeBroadcast(packet.Data))
}

func (s *Session) handleClear(from string) {
	if s.phase != PhaseRoundActive || from != s.artistID {
		return
	}
	s.broadcast(MakeCanvasCleared())
}

// endRound is reached from exactly one of two racing triggers: timer
// expiry, or the last non-artist guessing correctly. Cancelling the
// timer first makes whichever trigger ran first authoritative.
func (s *Session) endRound(winnerID string) {
	s.cancelActiveTimer()
	s.phase = PhaseRoundEnding

	winnerName := ""
	if winnerID != "" {
		if entry, ok := s.roster.get(winnerID); ok {
			winnerName = entry.name
		}
	}

	round := s.roundsPlayed + 1
	s.broadcast(MakeRoundEnded(winnerName, s.secretWord, round, s.cfg.MaxRounds))
	s.log.Info().Int("round", round).Str("word", s.secretWord).Str("winner", winnerName).Msg("round ended")

	s.roundsPlayed++
	s.secretWord = ""

	if s.roundsPlayed < s.cfg.MaxRounds {
		s.schedule(s.cfg.InterRoundDelay, timerNextRound)
		return
	}
	s.finishGame()
}

func (s *Session) finishGame() {
	s.cancelActiveTimer()
	s.phase = PhaseGameOver
	s.artistID = ""
	s.secretWord = ""
	s.broadcast(MakeGameOver(s.roster.scores()))
	s.log.Info().Int("rounds", s.roundsPlayed).Msg("game over")
}

func (s *Session) handleDisconnect(id string) {
	wasArtist := id == s.artistID
	replacement := ""
	if wasArtist {
		replacement = s.roster.nextArtist(id)
		if replacement == id {
			replacement = ""
		}
	}

	delete(s.clients, id)
	if !s.roster.remove(id) {
		return
	}
	delete(s.correctGuessers, id)
	s.log.Info().Str("player", id).Int("count", s.roster.size()).Msg("player left")

	s.broadcast(MakePlayerCount(s.roster.size(), s.cfg.MaxPlayers))

	if s.roster.size() == 0 {
		s.cancelActiveTimer()
		s.phase = PhaseIdle
		s.started = false
		s.artistID = ""
		s.secretWord = ""
		return
	}

	if wasArtist && s.phase != PhaseGameOver {
		s.cancelActiveTimer()
		s.broadcast(MakeArtistLeft())
		s.artistID = ""
		s.forcedNextArtist = replacement
		s.startRound()
		return
	}

	if s.roster.size() < s.cfg.MinPlayers && s.phase != PhaseWaiting {
		if s.phase == PhaseStarting {
			// countdown can't complete below quorum
			s.cancelActiveTimer()
			s.phase = PhaseWaiting
		}
		// an in-progress round keeps going; the round-start guard
		// reverts to Waiting once it ends
		s.broadcast(MakeWaitingCount(s.roster.size(), s.cfg.MinPlayers))
	}
}

func (s *Session) handlePing() {
	for id, c := range s.clients {
		if err := c.Ping(); err != nil {
			s.log.Warn().Str("player", id).Msg("ping failed, dropping player")
			c.CancelAndRelease()
			s.handleDisconnect(id)
		}
	}
}
