package catalog

import (
	"sort"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

// BuildTree converts a flat category list into a forest of root nodes.
//
// A nil ParentID or a ParentID referencing a category absent from the input
// makes the category a root. A category that is its own ancestor through a
// parent chain is cut loose and becomes a root, reported through a warning.
// Children at every level are ordered by OrderIndex ascending, ties keeping
// input order. Pure function, callers own any caching.
func BuildTree(categories []Category) ([]*Node, []pricing.Warning) {
	n := len(categories)
	index := make(map[string]int, n)
	for i, c := range categories {
		index[c.ID] = i
	}

	// parentOf[i] is the input index of i's parent, or -1 for a root.
	parentOf := make([]int, n)
	for i, c := range categories {
		parentOf[i] = -1
		if c.ParentID == nil {
			continue
		}
		if j, ok := index[*c.ParentID]; ok {
			parentOf[i] = j
		}
	}

	var warnings []pricing.Warning
	for i := range categories {
		visited := make(map[int]struct{})
		for j := parentOf[i]; j != -1; j = parentOf[j] {
			if j == i {
				parentOf[i] = -1
				warnings = append(warnings, pricing.Warning{
					Code:    pricing.WarnCategoryCycle,
					Subject: categories[i].ID,
					Detail:  "category is its own ancestor, attached as root",
				})
				break
			}
			if _, seen := visited[j]; seen {
				break
			}
			visited[j] = struct{}{}
		}
	}

	nodes := make([]*Node, n)
	for i, c := range categories {
		nodes[i] = &Node{Category: c, Children: []*Node{}}
	}
	var roots []*Node
	for i, node := range nodes {
		if p := parentOf[i]; p == -1 {
			roots = append(roots, node)
		} else {
			nodes[p].Children = append(nodes[p].Children, node)
		}
	}

	sortLevel(roots)
	for _, node := range nodes {
		sortLevel(node.Children)
	}
	for _, root := range roots {
		countDescendants(root)
	}
	return roots, warnings
}

func sortLevel(level []*Node) {
	sort.SliceStable(level, func(a, b int) bool {
		return level[a].OrderIndex < level[b].OrderIndex
	})
}

func countDescendants(node *Node) int {
	total := 0
	for _, child := range node.Children {
		total += 1 + countDescendants(child)
	}
	node.DescendantCount = total
	return total
}
