// Package gate decides whether an actor may perform a live action on a board.
// Decisions are pure functions of their inputs: no I/O, no clock reads.
package gate

import (
	"time"

	boarddomain "teatime-live/internal/board/domain"
	"teatime-live/internal/live/domain"
)

// OpenWindow is the half-width of the window around the broadcast instant in which a live may be opened.
const OpenWindow = 30 * time.Minute

// Gate evaluates the authorization rules for live actions.
// loc decides what "the same calendar day" means; nil means UTC.
type Gate struct {
	loc *time.Location
}

// New returns a Gate that compares calendar days in loc.
func New(loc *time.Location) Gate {
	if loc == nil {
		loc = time.UTC
	}
	return Gate{loc: loc}
}

// Decide applies the rules in order, first match wins:
//  1. the board must be active
//  2. owner-only actions (open, kick, mute, close) require the owner
//  3. open requires now within ±OpenWindow of the broadcast instant, on the same day
//  4. is-open and join require the owner or a roster member
func (g Gate) Decide(action domain.Action, board *boarddomain.Board, actorID string, now time.Time, isMember bool) domain.Decision {
	if board == nil || !board.Activated {
		return domain.Deny(domain.ReasonBoardUnavailable, "")
	}
	owner := board.IsOwner(actorID)

	switch action {
	case domain.ActionIsOpen, domain.ActionJoin:
		if owner || isMember {
			return domain.Allow()
		}
		return domain.Deny(domain.ReasonNotAMember, "")
	}

	if !owner {
		return domain.Deny(domain.ReasonNotOwner, "")
	}
	if action == domain.ActionOpen {
		if detail, ok := g.inWindow(board.BroadcastAt, now); !ok {
			return domain.Deny(domain.ReasonOutsideWindow, detail)
		}
	}
	return domain.Allow()
}

func (g Gate) inWindow(broadcastAt, now time.Time) (domain.WindowDetail, bool) {
	b := broadcastAt.In(g.loc)
	n := now.In(g.loc)
	by, bm, bd := b.Date()
	ny, nm, nd := n.Date()
	if by != ny || bm != nm || bd != nd {
		return domain.WrongDay, false
	}
	if n.Before(b.Add(-OpenWindow)) {
		return domain.TooEarly, false
	}
	if n.After(b.Add(OpenWindow)) {
		return domain.TooLate, false
	}
	return "", true
}
