package hn

import (
	"context"
	"errors"
	"testing"
)

// fakeSource serves items from a map; ids not present are absent.
type fakeSource struct {
	items map[int64]*Item
	errOn int64
	calls int
}

func (f *fakeSource) Item(ctx context.Context, id int64) (*Item, error) {
	f.calls++
	if f.errOn != 0 && id == f.errOn {
		return nil, errors.New("boom")
	}
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	// Copy so tests can reuse the source across fetches.
	c := *item
	c.Comments = nil
	return &c, nil
}

func countNodes(item *Item) int {
	n := 0
	for _, c := range item.Comments {
		n += 1 + countNodes(c)
	}
	return n
}

func TestFetchTree(t *testing.T) {
	source := &fakeSource{items: map[int64]*Item{
		1: {ID: 1, Type: "story", Title: "T", Kids: []int64{2, 3}},
		2: {ID: 2, Type: "comment", Text: "a", Kids: []int64{4}},
		3: {ID: 3, Type: "comment", Text: "b"},
		4: {ID: 4, Type: "comment", Text: "c"},
	}}

	root, err := NewTreeFetcher(source, 0).FetchTree(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchTree failed: %v", err)
	}
	if root == nil {
		t.Fatal("Expected root item")
	}
	if got := countNodes(root); got != 3 {
		t.Errorf("Expected 3 comment nodes, got %d", got)
	}
	if len(root.Comments) != 2 || root.Comments[0].ID != 2 || root.Comments[1].ID != 3 {
		t.Errorf("Children out of order: %+v", root.Comments)
	}
	if len(root.Comments[0].Comments) != 1 || root.Comments[0].Comments[0].ID != 4 {
		t.Errorf("Nested child missing: %+v", root.Comments[0].Comments)
	}
}

func TestFetchTreeAbsentRoot(t *testing.T) {
	source := &fakeSource{items: map[int64]*Item{}}
	root, err := NewTreeFetcher(source, 0).FetchTree(context.Background(), 99)
	if err != nil {
		t.Fatalf("Absent root should not error: %v", err)
	}
	if root != nil {
		t.Errorf("Expected nil root, got %+v", root)
	}
}

func TestFetchTreeDropsAbsentChildren(t *testing.T) {
	// Child 2 returns null upstream; sibling 3 must still be fetched.
	source := &fakeSource{items: map[int64]*Item{
		1: {ID: 1, Type: "story", Title: "T", Kids: []int64{2, 3}},
		3: {ID: 3, Type: "comment", Text: "b"},
	}}

	root, err := NewTreeFetcher(source, 0).FetchTree(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchTree failed: %v", err)
	}
	if len(root.Comments) != 1 || root.Comments[0].ID != 3 {
		t.Errorf("Expected only child 3, got %+v", root.Comments)
	}
}

func TestFetchTreeAllChildrenAbsent(t *testing.T) {
	source := &fakeSource{items: map[int64]*Item{
		1: {ID: 1, Type: "story", Title: "T", Kids: []int64{2}},
	}}

	root, err := NewTreeFetcher(source, 0).FetchTree(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchTree failed: %v", err)
	}
	if len(root.Comments) != 0 {
		t.Errorf("Expected empty effective child list, got %+v", root.Comments)
	}
}

func TestFetchTreeErrorAborts(t *testing.T) {
	source := &fakeSource{
		items: map[int64]*Item{
			1: {ID: 1, Type: "story", Title: "T", Kids: []int64{2}},
		},
		errOn: 2,
	}

	if _, err := NewTreeFetcher(source, 0).FetchTree(context.Background(), 1); err == nil {
		t.Fatal("Expected fetch error to propagate")
	}
}

func TestFetchTreeMaxNodes(t *testing.T) {
	source := &fakeSource{items: map[int64]*Item{
		1: {ID: 1, Type: "story", Title: "T", Kids: []int64{2, 3, 4}},
		2: {ID: 2, Type: "comment"},
		3: {ID: 3, Type: "comment"},
		4: {ID: 4, Type: "comment"},
	}}

	root, err := NewTreeFetcher(source, 2).FetchTree(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchTree failed: %v", err)
	}
	if got := countNodes(root); got != 2 {
		t.Errorf("Expected budget of 2 nodes, got %d", got)
	}
}
