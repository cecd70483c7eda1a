package etl

import (
	"errors"
	"sync"
	"testing"

	"gorm.io/gorm/schema"

	"github.com/maguenza/hackernews-ai-project/internal/hn"
	"github.com/maguenza/hackernews-ai-project/internal/models"
)

type visited struct {
	id       int64
	parentID *int64
}

func collectWalk(t *testing.T, comments []*hn.Item) []visited {
	t.Helper()
	var got []visited
	err := walkComments(comments, nil, func(c *hn.Item, parentID *int64) error {
		got = append(got, visited{id: c.ID, parentID: parentID})
		return nil
	})
	if err != nil {
		t.Fatalf("walkComments failed: %v", err)
	}
	return got
}

func TestWalkComments(t *testing.T) {
	tree := []*hn.Item{
		{ID: 2, Comments: []*hn.Item{
			{ID: 4},
			{ID: 5, Comments: []*hn.Item{{ID: 6}}},
		}},
		{ID: 3},
	}

	got := collectWalk(t, tree)
	if len(got) != 5 {
		t.Fatalf("Expected 5 visited nodes, got %d", len(got))
	}

	// Depth-first order with the immediate parent at each level.
	wantOrder := []int64{2, 4, 5, 6, 3}
	for i, want := range wantOrder {
		if got[i].id != want {
			t.Errorf("Visit %d: got id %d, want %d", i, got[i].id, want)
		}
	}
	if got[0].parentID != nil || got[4].parentID != nil {
		t.Error("Top-level comments must have nil parent id")
	}
	if got[1].parentID == nil || *got[1].parentID != 2 {
		t.Errorf("Node 4 parent = %v, want 2", got[1].parentID)
	}
	if got[3].parentID == nil || *got[3].parentID != 5 {
		t.Errorf("Node 6 parent = %v, want 5", got[3].parentID)
	}
}

func TestWalkCommentsSkipsNilNodes(t *testing.T) {
	tree := []*hn.Item{
		nil,
		{ID: 2, Comments: []*hn.Item{nil, {ID: 3}}},
	}

	got := collectWalk(t, tree)
	if len(got) != 2 {
		t.Fatalf("Expected 2 visited nodes, got %d", len(got))
	}
	if got[0].id != 2 || got[1].id != 3 {
		t.Errorf("Unexpected visit order: %+v", got)
	}
}

func TestWalkCommentsEmptyTree(t *testing.T) {
	if got := collectWalk(t, nil); len(got) != 0 {
		t.Errorf("Expected no visits for empty tree, got %d", len(got))
	}
}

func modelColumns(t *testing.T, model interface{}) map[string]bool {
	t.Helper()
	s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("Failed to parse model schema: %v", err)
	}
	cols := make(map[string]bool)
	for _, f := range s.Fields {
		if f.DBName != "" {
			cols[f.DBName] = true
		}
	}
	return cols
}

// Every column of an entity model is either replaced on conflict or
// deliberately frozen. A model field added without a matching entry in the
// update list would silently stop being refreshed on re-upsert.
func TestUpsertColumnsCoverAllModelColumns(t *testing.T) {
	tests := []struct {
		name    string
		model   interface{}
		updates []string
		frozen  []string
	}{
		{"user", &models.User{}, userUpdateColumns, []string{"id", "username", "is_deleted"}},
		{"story", &models.Story{}, storyUpdateColumns, []string{"id", "created_at"}},
		{"comment", &models.Comment{}, commentUpdateColumns, []string{"id", "created_at"}},
		{"job", &models.Job{}, jobUpdateColumns, []string{"id", "created_at"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := modelColumns(t, tt.model)

			covered := make(map[string]bool)
			for _, c := range tt.updates {
				if !cols[c] {
					t.Errorf("Update column %q does not exist on the %s model", c, tt.name)
				}
				covered[c] = true
			}
			for _, c := range tt.frozen {
				if !cols[c] {
					t.Errorf("Frozen column %q does not exist on the %s model", c, tt.name)
				}
				if covered[c] {
					t.Errorf("Column %q is both frozen and updated", c)
				}
				covered[c] = true
			}

			for c := range cols {
				if !covered[c] {
					t.Errorf("Model column %q is neither updated on conflict nor frozen", c)
				}
			}
		})
	}
}

func TestWalkCommentsVisitErrorAborts(t *testing.T) {
	tree := []*hn.Item{{ID: 2}, {ID: 3}}

	visits := 0
	err := walkComments(tree, nil, func(c *hn.Item, parentID *int64) error {
		visits++
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("Expected visit error to propagate")
	}
	if visits != 1 {
		t.Errorf("Expected walk to stop after first error, got %d visits", visits)
	}
}
