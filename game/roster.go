package game

import (
	"sort"
	"strconv"
)

type rosterEntry struct {
	id    string
	name  string
	score int
}

// roster tracks connected players in join order. It is owned by the
// session actor and must never be touched from outside it.
type roster struct {
	entries []*rosterEntry
	byID    map[string]*rosterEntry
	joined  int // players ever admitted, drives "Player N" naming
	max     int
}

func newRoster(max int) *roster {
	return &roster{
		entries: make([]*rosterEntry, 0, max),
		byID:    make(map[string]*rosterEntry),
		max:     max,
	}
}

// add admits a player and assigns its display name. ErrRoomFull when at
// capacity; the existing players are left untouched.
func (r *roster) add(id string) (string, error) {
	if len(r.entries) >= r.max {
		return "", ErrRoomFull
	}
	r.joined++
	entry := &rosterEntry{id: id, name: playerName(r.joined)}
	r.entries = append(r.entries, entry)
	r.byID[id] = entry
	return entry.name, nil
}

// remove drops a player, reporting whether it was present at all.
func (r *roster) remove(id string) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

func (r *roster) size() int {
	return len(r.entries)
}

func (r *roster) get(id string) (*rosterEntry, bool) {
	e, ok := r.byID[id]
	return e, ok
}

func (r *roster) addScore(id string, points int) int {
	e, ok := r.byID[id]
	if !ok {
		return 0
	}
	e.score += points
	return e.score
}

// nextArtist rotates round-robin over join order. When currentID is
// empty or no longer present the rotation restarts at the first player.
// Returns "" only when the roster is empty.
func (r *roster) nextArtist(currentID string) string {
	if len(r.entries) == 0 {
		return ""
	}
	for i, e := range r.entries {
		if e.id == currentID {
			return r.entries[(i+1)%len(r.entries)].id
		}
	}
	return r.entries[0].id
}

// scores returns a snapshot sorted by score descending, ties kept in
// join order.
func (r *roster) scores() []ScoreEntry {
	out := make([]ScoreEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, ScoreEntry{Name: e.name, Score: e.score})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func playerName(n int) string {
	return "Player " + strconv.Itoa(n)
}
