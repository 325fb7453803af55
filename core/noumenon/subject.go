package noumenon

// Subject is the identity of a thing across versions: a stable SID shared by
// every Belief that is ever a valuation of it, across every Mind. A Subject
// carries an optional label and an optional ground Mind — the Mind it
// locally "owns" (e.g. an NPC's own mind-of-self). Per the 1-to-many
// invariant, a Subject may have at most one ground Mind.
type Subject struct {
	SID        SID
	Label      string
	GroundMind *Mind

	world *World
}

// Sysdesig renders a short human-readable designator for debugging, e.g.
// "Subject#7(npc_guard)". Not machine-parsed.
func (s *Subject) Sysdesig() string {
	if s == nil {
		return "Subject(nil)"
	}
	if s.Label != "" {
		return "Subject#" + itoa(uint64(s.SID)) + "(" + s.Label + ")"
	}
	return "Subject#" + itoa(uint64(s.SID))
}
