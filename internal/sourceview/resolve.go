package sourceview

import "strings"

// ResolveContainer returns the id of the group that directly contains
// targetID, or Root when no group encloses it. ok is false when targetID
// is not in the sequence or the sequence is not well nested.
func ResolveContainer(targetID string, seq Sequence) (container string, ok bool) {
	idx := seq.IndexOf(targetID)
	if idx < 0 {
		return "", false
	}

	ownEnd := EndID(targetID)
	for i := idx + 1; i < len(seq); i++ {
		e := seq[i]
		switch e.Kind {
		case KindGroupEnd:
			if e.ID == ownEnd {
				continue
			}
			return e.GroupID(), true
		case KindGroupStart:
			// The interior of a nested group belongs to a deeper container
			end, found := seq.matchEnd(i)
			if !found {
				return "", false
			}
			i = end
		}
	}
	return Root, true
}

// ResolveIndex returns the zero-based position of targetID among the
// direct children of container. A nested group counts as one child.
// A GROUP_END id resolves to the position of its group.
func ResolveIndex(container, targetID string, seq Sequence) (int, bool) {
	from, to := -1, len(seq)
	if container != Root {
		from = seq.IndexOf(container)
		if from < 0 || seq[from].Kind != KindGroupStart {
			return 0, false
		}
		end, found := seq.matchEnd(from)
		if !found {
			return 0, false
		}
		to = end
	}

	target := strings.TrimPrefix(targetID, EndPrefix)
	count := 0
	for i := from + 1; i < to; i++ {
		e := seq[i]
		if e.ID == target {
			return count, true
		}
		if e.Kind == KindGroupStart {
			end, found := seq.matchEnd(i)
			if !found {
				return 0, false
			}
			i = end
		}
		count++
	}
	return 0, false
}

// Locate returns the container and sibling index of id in one call
func Locate(id string, seq Sequence) (container string, index int, ok bool) {
	container, ok = ResolveContainer(id, seq)
	if !ok {
		return "", 0, false
	}
	index, ok = ResolveIndex(container, id, seq)
	return container, index, ok
}
