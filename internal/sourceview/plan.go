package sourceview

import "errors"

var (
	// ErrUnknownEntry is returned when the active or over id is not in the sequence
	ErrUnknownEntry = errors.New("entry not in sequence")

	// ErrDropIntoSelf is returned when a group is dropped onto one of its own entries
	ErrDropIntoSelf = errors.New("cannot drop a group inside itself")

	// ErrMalformedSequence is returned when a group in the sequence has no closing entry
	ErrMalformedSequence = errors.New("malformed sequence")

	// ErrUnresolved is returned when the drop slot cannot be mapped to a container
	ErrUnresolved = errors.New("drop target could not be resolved")
)

// Reserved ids of the entries used while simulating a drop
const (
	dropMarkerID = "\x00drop"
	fillerID     = "\x00filler"
)

// Plan is the hierarchical destination of a drag
type Plan struct {
	ObjectID  string `json:"object_id"`
	Container string `json:"container"`
	Index     int    `json:"index"`
}

// IsRoot reports whether the object lands directly under the root
func (p Plan) IsRoot() bool {
	return p.Container == Root
}

// PlanMove translates a drag that ended with activeID over overID into
// the container and sibling index the dragged object must move to.
//
// The dragged span (the object, plus its whole subtree for a group) is
// excised and replaced by one marker entry at the drop slot, padded with
// fillers so every other entry keeps its relative order. The marker is
// then resolved like any other entry. Moving up, the span lands before
// over. Moving down, it lands after over when over is a sibling and
// takes over's slot otherwise; a GROUP_END belongs to the group it closes.
func PlanMove(activeID, overID string, seq Sequence) (Plan, error) {
	active := seq.IndexOf(activeID)
	over := seq.IndexOf(overID)
	if active < 0 || over < 0 {
		return Plan{}, ErrUnknownEntry
	}

	// Grabbing a closing tag drags the whole group
	if seq[active].Kind == KindGroupEnd {
		activeID = seq[active].GroupID()
		active = seq.IndexOf(activeID)
		if active < 0 {
			return Plan{}, ErrMalformedSequence
		}
	}

	start, end, ok := seq.span(active)
	if !ok {
		return Plan{}, ErrMalformedSequence
	}
	// Releasing on the group's own closing tag leaves it in place
	if over == end {
		over = start
	}
	if over > start && over < end {
		return Plan{}, ErrDropIntoSelf
	}

	var sim Sequence
	if over > end {
		after, err := landsAfter(activeID, over, seq)
		if err != nil {
			return Plan{}, err
		}
		cut := over
		if after {
			cut = over + 1
		}
		sim = make(Sequence, 0, len(seq))
		sim = append(sim, seq[:start]...)
		sim = append(sim, seq[end+1:cut]...)
		sim = appendMarker(sim, end-start)
		sim = append(sim, seq[cut:]...)
	} else {
		sim = make(Sequence, 0, len(seq))
		sim = append(sim, seq[:over]...)
		sim = appendMarker(sim, end-start)
		sim = append(sim, seq[over:start]...)
		sim = append(sim, seq[end+1:]...)
	}

	container, index, ok := Locate(dropMarkerID, sim)
	if !ok {
		return Plan{}, ErrUnresolved
	}
	return Plan{ObjectID: activeID, Container: container, Index: index}, nil
}

// landsAfter decides, for a downward drag, whether the span goes after
// the over entry (sibling reorder) or before it (entering a foreign container).
func landsAfter(activeID string, over int, seq Sequence) (bool, error) {
	from, ok := ResolveContainer(activeID, seq)
	if !ok {
		return false, ErrUnresolved
	}
	target := seq[over]
	if target.Kind == KindGroupEnd {
		return target.GroupID() == from, nil
	}
	to, ok := ResolveContainer(target.ID, seq)
	if !ok {
		return false, ErrUnresolved
	}
	return to == from, nil
}

func appendMarker(seq Sequence, fillers int) Sequence {
	seq = append(seq, Entry{Kind: KindLeaf, ID: dropMarkerID})
	for i := 0; i < fillers; i++ {
		seq = append(seq, Entry{Kind: KindLeaf, ID: fillerID})
	}
	return seq
}
