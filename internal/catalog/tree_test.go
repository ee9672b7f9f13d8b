package catalog

import (
	"reflect"
	"testing"

	"github.com/nkg-services/backend-electro/internal/pricing"
)

func cat(id, name string, parent *string, order int) Category {
	return Category{ID: id, Name: name, ParentID: parent, OrderIndex: order, IsActive: true}
}

func ptr(s string) *string { return &s }

func flatten(nodes []*Node, edges map[string]string) {
	for _, node := range nodes {
		for _, child := range node.Children {
			edges[child.ID] = node.ID
		}
		flatten(node.Children, edges)
	}
}

func countNodes(nodes []*Node) int {
	total := 0
	for _, node := range nodes {
		total += 1 + countNodes(node.Children)
	}
	return total
}

func TestBuildTreeRoundTrip(t *testing.T) {
	input := []Category{
		cat("root-a", "Cables", nil, 2),
		cat("root-b", "Panneaux", nil, 1),
		cat("child-1", "Cuivre", ptr("root-a"), 1),
		cat("child-2", "Aluminium", ptr("root-a"), 2),
		cat("grand-1", "Rigide", ptr("child-1"), 1),
	}
	wantEdges := map[string]string{
		"child-1": "root-a",
		"child-2": "root-a",
		"grand-1": "child-1",
	}

	roots, warnings := BuildTree(input)
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	gotEdges := map[string]string{}
	flatten(roots, gotEdges)
	if !reflect.DeepEqual(gotEdges, wantEdges) {
		t.Fatalf("edge set mismatch: got %v want %v", gotEdges, wantEdges)
	}
	if countNodes(roots) != len(input) {
		t.Fatalf("expected %d nodes, got %d", len(input), countNodes(roots))
	}
}

func TestBuildTreeOrdersByOrderIndex(t *testing.T) {
	input := []Category{
		cat("b", "Second", nil, 2),
		cat("a", "First", nil, 1),
		cat("c", "AlsoSecond", nil, 2),
	}
	roots, _ := BuildTree(input)
	got := []string{roots[0].ID, roots[1].ID, roots[2].ID}
	// ties keep input order: b before c
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	input := []Category{
		cat("visible", "Visible", ptr("filtered-out"), 1),
		cat("plain", "Plain", nil, 2),
	}
	roots, warnings := BuildTree(input)
	if len(warnings) != 0 {
		t.Fatalf("orphan parent must not warn, got %v", warnings)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "visible" {
		t.Fatalf("expected orphan first by order index, got %s", roots[0].ID)
	}
}

func TestBuildTreeBreaksCycle(t *testing.T) {
	input := []Category{
		cat("a", "A", ptr("b"), 1),
		cat("b", "B", ptr("a"), 2),
	}
	roots, warnings := BuildTree(input)
	if countNodes(roots) != 2 {
		t.Fatalf("expected both nodes exactly once, got %d", countNodes(roots))
	}
	if len(warnings) != 1 || warnings[0].Code != pricing.WarnCategoryCycle {
		t.Fatalf("expected one cycle warning, got %v", warnings)
	}
	if warnings[0].Subject != "a" {
		t.Fatalf("expected first cycle member cut, got %s", warnings[0].Subject)
	}
}

func TestBuildTreeCycleWithTail(t *testing.T) {
	// "tail" points into a two-node cycle, must not loop forever.
	input := []Category{
		cat("tail", "Tail", ptr("a"), 1),
		cat("a", "A", ptr("b"), 2),
		cat("b", "B", ptr("a"), 3),
	}
	roots, warnings := BuildTree(input)
	if countNodes(roots) != 3 {
		t.Fatalf("expected 3 nodes, got %d", countNodes(roots))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one cycle warning, got %v", warnings)
	}
}

func TestBuildTreeDescendantCount(t *testing.T) {
	input := []Category{
		cat("root", "Root", nil, 1),
		cat("child", "Child", ptr("root"), 1),
		cat("grand", "Grand", ptr("child"), 1),
	}
	roots, _ := BuildTree(input)
	if len(roots) != 1 {
		t.Fatalf("expected single root, got %d", len(roots))
	}
	if roots[0].DescendantCount != 2 {
		t.Fatalf("expected 2 descendants, got %d", roots[0].DescendantCount)
	}
	if roots[0].Children[0].DescendantCount != 1 {
		t.Fatalf("expected 1 descendant at child, got %d", roots[0].Children[0].DescendantCount)
	}
}

func TestBuildTreeEmptyInput(t *testing.T) {
	roots, warnings := BuildTree(nil)
	if len(roots) != 0 || len(warnings) != 0 {
		t.Fatalf("expected empty forest, got %v %v", roots, warnings)
	}
}
