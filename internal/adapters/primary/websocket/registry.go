package websocket

import (
	"log/slog"
	"sync"

	apperrors "github.com/cafeflow/backend/internal/core/errors"
)

// Registry tracks which sessions belong to which broadcast groups. It owns
// the only shared mutable state in the realtime core: a bidirectional
// mapping maintained as an exact inverse pair. A single mutex covers every
// operation, so a publish snapshot either sees a session in full or not at
// all, never half-removed.
type Registry struct {
	mu sync.Mutex

	// groups and sessions are exact inverses: (g, c) is in groups iff
	// (c, g) is in sessions.
	groups   map[Group]map[*Client]struct{}
	sessions map[*Client]map[Group]struct{}

	logger *slog.Logger
}

// NewRegistry creates an empty subscription registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		groups:   make(map[Group]map[*Client]struct{}),
		sessions: make(map[*Client]map[Group]struct{}),
		logger:   logger.With("component", "ws_registry"),
	}
}

// Register adds a session with no group memberships yet.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[c]; !ok {
		r.sessions[c] = make(map[Group]struct{})
	}
}

// Join adds the session to the group after checking the group's membership
// predicate. Joining a group twice is a no-op, not an error.
func (r *Registry) Join(c *Client, g Group) error {
	if !g.Admits(c.Principal) {
		return apperrors.ErrForbidden
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[c]; !ok {
		r.sessions[c] = make(map[Group]struct{})
	}
	if _, ok := r.groups[g]; !ok {
		r.groups[g] = make(map[*Client]struct{})
	}

	r.groups[g][c] = struct{}{}
	r.sessions[c][g] = struct{}{}

	r.logger.Debug("session joined group",
		"session_id", c.ID,
		"group", g.String(),
	)
	return nil
}

// Leave removes the pairing; no-op if absent.
func (r *Registry) Leave(c *Client, g Group) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removePairLocked(c, g)
}

// DropSession removes the session from every group it belongs to. The
// whole removal happens inside one critical section.
func (r *Registry) DropSession(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for g := range r.sessions[c] {
		r.removePairLocked(c, g)
	}
	delete(r.sessions, c)
}

// MembersOf returns a snapshot of the group's current members. The
// snapshot is taken inside the critical section; senders iterate it
// without holding the lock.
func (r *Registry) MembersOf(g Group) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.groups[g]
	if !ok {
		return nil
	}

	members := make([]*Client, 0, len(room))
	for c := range room {
		members = append(members, c)
	}
	return members
}

// SessionCount returns the number of registered sessions.
func (r *Registry) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// GroupCount returns the number of groups with at least one member.
func (r *Registry) GroupCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

// MemberCount returns the number of sessions in a group.
func (r *Registry) MemberCount(g Group) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[g])
}

func (r *Registry) removePairLocked(c *Client, g Group) {
	if room, ok := r.groups[g]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(r.groups, g)
		}
	}
	if subs, ok := r.sessions[c]; ok {
		delete(subs, g)
	}
}
