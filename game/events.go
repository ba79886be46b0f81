package game

import "encoding/json"

// Event is the envelope for everything the server pushes to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Outbound event types.
const (
	EventWaitingCount    = "waitingCount"
	EventPlayerCount     = "playerCount"
	EventCountdownTick   = "countdownTick"
	EventGameStarted     = "gameStarted"
	EventRoundStarted    = "roundStarted"
	EventArtistAssigned  = "artistAssigned"
	EventStrokeBroadcast = "strokeBroadcast"
	EventCanvasCleared   = "canvasCleared"
	EventGuessCorrect    = "guessCorrect"
	EventGuessWrong      = "guessWrong"
	EventRoundEnded      = "roundEnded"
	EventGameOver        = "gameOver"
	EventArtistLeft      = "artistLeft"
	EventRoomFull        = "roomFull"
	EventGuessRejected   = "guessRejected"
)

// Inbound packet types.
const (
	PacketSubmitGuess = "submitGuess"
	PacketDrawStroke  = "drawStroke"
	PacketClearCanvas = "clearCanvas"
)

// ClientPacket is the envelope for everything a client sends. Stroke
// payloads are never interpreted by the session, only relayed, so Data
// stays raw.
type ClientPacket struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type GuessPayload struct {
	Text string `json:"text"`
}

type WaitingCountPayload struct {
	Current int `json:"current"`
	Needed  int `json:"needed"`
}

type PlayerCountPayload struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

type CountdownTickPayload struct {
	Count int `json:"count"`
}

type RoundStartedPayload struct {
	ArtistName string `json:"artistName"`
	Round      int    `json:"round"`
}

type ArtistAssignedPayload struct {
	Word string `json:"word"`
}

type GuessCorrectPayload struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

type GuessWrongPayload struct {
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
}

type RoundEndedPayload struct {
	Winner    *string `json:"winner"`
	Word      string  `json:"word"`
	Round     int     `json:"round"`
	MaxRounds int     `json:"maxRounds"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type GameOverPayload struct {
	Scores []ScoreEntry `json:"scores"`
}

type GuessRejectedPayload struct {
	Reason string `json:"reason"`
}

func MakeWaitingCount(current, needed int) Event {
	return Event{Type: EventWaitingCount, Data: WaitingCountPayload{Current: current, Needed: needed}}
}

func MakePlayerCount(current, max int) Event {
	return Event{Type: EventPlayerCount, Data: PlayerCountPayload{Current: current, Max: max}}
}

func MakeCountdownTick(count int) Event {
	return Event{Type: EventCountdownTick, Data: CountdownTickPayload{Count: count}}
}

func MakeGameStarted() Event {
	return Event{Type: EventGameStarted}
}

func MakeRoundStarted(artistName string, round int) Event {
	return Event{Type: EventRoundStarted, Data: RoundStartedPayload{ArtistName: artistName, Round: round}}
}

func MakeArtistAssigned(word string) Event {
	return Event{Type: EventArtistAssigned, Data: ArtistAssignedPayload{Word: word}}
}

func MakeStrokeBroadcast(raw json.RawMessage) Event {
	return Event{Type: EventStrokeBroadcast, Data: raw}
}

func MakeCanvasCleared() Event {
	return Event{Type: EventCanvasCleared}
}

func MakeGuessCorrect(playerName string, score int) Event {
	return Event{Type: EventGuessCorrect, Data: GuessCorrectPayload{PlayerName: playerName, Score: score}}
}

func MakeGuessWrong(playerName, text string) Event {
	return Event{Type: EventGuessWrong, Data: GuessWrongPayload{PlayerName: playerName, Text: text}}
}

func MakeRoundEnded(winnerName, word string, round, maxRounds int) Event {
	payload := RoundEndedPayload{Word: word, Round: round, MaxRounds: maxRounds}
	if winnerName != "" {
		payload.Winner = &winnerName
	}
	return Event{Type: EventRoundEnded, Data: payload}
}

func MakeGameOver(scores []ScoreEntry) Event {
	return Event{Type: EventGameOver, Data: GameOverPayload{Scores: scores}}
}

func MakeArtistLeft() Event {
	return Event{Type: EventArtistLeft}
}

func MakeRoomFull() Event {
	return Event{Type: EventRoomFull}
}

func MakeGuessRejected(reason string) Event {
	return Event{Type: EventGuessRejected, Data: GuessRejectedPayload{Reason: reason}}
}
