package noumenon

import "github.com/RoaringBitmap/roaring/v2"

// reverseIndex answers "which beliefs have trait T pointing at subject S?"
// For every traittype whose Kind stores a Subject reference (Subject or
// Archetype), every Belief's creation records an entry here.
//
// The candidate set for a (subject, traittype) pair is kept as a
// roaring.Bitmap of belief IDs rather than a map[*Belief]struct{}: subjects
// with large fan-in (a popular location, a widely-observed NPC) can
// otherwise grow an unbounded Go map per hot subject. The bitmap only holds
// integer belief IDs; the payload (the actual *Belief, which carries its
// originating State) lives in a side table keyed by belief ID,
// looked up only for the IDs the bitmap says are candidates.
type reverseIndex struct {
	bitmaps map[SID]map[string]*roaring.Bitmap
	payload map[ID]*Belief
}

func newReverseIndex() *reverseIndex {
	return &reverseIndex{
		bitmaps: make(map[SID]map[string]*roaring.Bitmap),
		payload: make(map[ID]*Belief),
	}
}

func (ri *reverseIndex) record(subject SID, traittypeLabel string, b *Belief) {
	byTT, ok := ri.bitmaps[subject]
	if !ok {
		byTT = make(map[string]*roaring.Bitmap)
		ri.bitmaps[subject] = byTT
	}
	bm, ok := byTT[traittypeLabel]
	if !ok {
		bm = roaring.New()
		byTT[traittypeLabel] = bm
	}
	bm.Add(uint32(b.ID))
	ri.payload[b.ID] = b
}

func (ri *reverseIndex) candidates(subject SID, traittypeLabel string) []*Belief {
	byTT, ok := ri.bitmaps[subject]
	if !ok {
		return nil
	}
	bm, ok := byTT[traittypeLabel]
	if !ok {
		return nil
	}
	out := make([]*Belief, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		id := ID(it.Next())
		if b, ok := ri.payload[id]; ok {
			out = append(out, b)
		}
	}
	return out
}

// indexReverseTraits scans b's own trait map for Subject-valued entries
// (scalar or inside an Array container) and records each in the world's
// reverse index, at Belief-creation time.
func (w *World) indexReverseTraits(b *Belief) {
	for tt, v := range b.Traits {
		if tt.Kind != TraitSubject && tt.Kind != TraitArchetype {
			continue
		}
		switch val := v.(type) {
		case SubjectRef:
			w.revIndex.record(SID(val), tt.Label, b)
		case ArrayValue:
			for _, item := range val {
				if ref, ok := item.(SubjectRef); ok {
					w.revIndex.record(SID(ref), tt.Label, b)
				}
			}
		}
	}
}

// RevTrait yields every Belief visible in state (or state's chain) whose
// traittype points to subject's SID, deduplicated to the latest visible
// version per subject.
func (subj *Subject) RevTrait(state *State, tt *Traittype) []*Belief {
	w := subj.world
	candidates := w.revIndex.candidates(subj.SID, tt.Label)
	bySubject := map[SID]*Belief{}
	order := []SID{}
	for _, cand := range candidates {
		if !state.visibleBelief(cand) {
			continue
		}
		if _, seen := bySubject[cand.Subject.SID]; !seen {
			order = append(order, cand.Subject.SID)
		}
		bySubject[cand.Subject.SID] = cand
	}
	out := make([]*Belief, 0, len(order))
	for _, sid := range order {
		out = append(out, bySubject[sid])
	}
	return out
}

// RevTrait is the Belief-level convenience: every Belief whose traittype
// points at b's Subject.
func (b *Belief) RevTrait(state *State, tt *Traittype) []*Belief {
	return b.Subject.RevTrait(state, tt)
}
