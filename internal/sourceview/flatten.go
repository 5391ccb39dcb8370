package sourceview

import "vecteditor/internal/domain/models/svgdoc"

// Flatten walks the tree depth-first in child order and emits one LEAF
// entry per leaf and a START/END pair around every group's children.
// Root children sit at depth 1.
func Flatten(tree *svgdoc.Tree) Sequence {
	if tree == nil {
		return Sequence{}
	}
	leaves, groups := tree.Counts()
	seq := make(Sequence, 0, leaves+2*groups)
	return flattenChildren(seq, tree.Children, 1)
}

func flattenChildren(seq Sequence, children []*svgdoc.Object, depth int) Sequence {
	for _, child := range children {
		if !child.IsGroup() {
			seq = append(seq, Entry{Kind: KindLeaf, ID: child.ID, Depth: depth, Shape: child.Type})
			continue
		}
		seq = append(seq, Entry{Kind: KindGroupStart, ID: child.ID, Depth: depth, Shape: svgdoc.KindGroup})
		seq = flattenChildren(seq, child.Children, depth+1)
		seq = append(seq, Entry{Kind: KindGroupEnd, ID: EndID(child.ID), Depth: depth, Shape: svgdoc.KindGroup})
	}
	return seq
}
