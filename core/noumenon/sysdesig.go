package noumenon

import "strconv"

// itoa is the shared base for every Sysdesig() helper's numeric formatting.
func itoa(n uint64) string { return strconv.FormatUint(n, 10) }

// Sysdesig renders a short human-readable designator for a State, e.g.
// "State#7(tt=3,vt=3)".
func (s *State) Sysdesig() string {
	if s == nil {
		return "State(nil)"
	}
	return "State#" + itoa(uint64(s.id)) + "(tt=" + itoa(uint64(s.tt)) + ",vt=" + itoa(uint64(s.vt)) + ")"
}

// Sysdesig renders a short human-readable designator for a Convergence.
func (c *Convergence) Sysdesig() string {
	if c == nil {
		return "Convergence(nil)"
	}
	return "Convergence#" + itoa(uint64(c.id)) + "(" + itoa(uint64(len(c.components))) + " components)"
}

// Sysdesig renders a short human-readable designator for a Mind.
func (m *Mind) Sysdesig() string {
	if m == nil {
		return "Mind(nil)"
	}
	if m.label != "" {
		return "Mind#" + itoa(uint64(m.id)) + "(" + m.label + ")"
	}
	return "Mind#" + itoa(uint64(m.id))
}
