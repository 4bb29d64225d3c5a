package parser

import "github.com/dgallion1/doccheck/internal/docmodel"

// buildHeadingTree builds the nested tree and the flat list from the
// ordered headings via a level stack: pop while the top is at or below the
// current level, attach to the new top (or the root), push.
func buildHeadingTree(headings []docmodel.Heading) docmodel.HeadingTree {
	tree := docmodel.HeadingTree{Tree: []*docmodel.HeadingNode{}, Flat: []docmodel.FlatHeading{}}

	type stackEntry struct {
		node *docmodel.HeadingNode
		flat int
	}
	var stack []stackEntry

	for _, h := range headings {
		node := &docmodel.HeadingNode{
			Level:          h.Level,
			Text:           h.Text,
			ParagraphIndex: h.ParagraphIndex,
			Children:       []*docmodel.HeadingNode{},
		}
		flat := docmodel.FlatHeading{
			Level:          h.Level,
			Text:           h.Text,
			ParagraphIndex: h.ParagraphIndex,
			Children:       []string{},
		}

		for len(stack) > 0 && stack[len(stack)-1].node.Level >= h.Level {
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			top := stack[len(stack)-1]
			top.node.Children = append(top.node.Children, node)
			flat.Parent = top.node.Text
			tree.Flat[top.flat].Children = append(tree.Flat[top.flat].Children, h.Text)
		} else {
			tree.Tree = append(tree.Tree, node)
		}

		tree.Flat = append(tree.Flat, flat)
		stack = append(stack, stackEntry{node: node, flat: len(tree.Flat) - 1})
	}

	return tree
}
