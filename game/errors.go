package game

import "errors"

var (
	ErrRoomFull         = errors.New("room-full")
	ErrArtistGuess      = errors.New("artist-cannot-guess")
	ErrNoEligibleArtist = errors.New("no-eligible-artist")
)

var ErrSendBufferFull = errors.New("send-buffer-full")
