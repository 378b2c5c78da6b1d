package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func nb(name string, cells ...*Cell) *Notebook {
	return &Notebook{ID: "nb-1", Name: name, Version: SchemaVersion, Cells: cells}
}

func TestDiff(t *testing.T) {
	a := &Cell{ID: "a", OutputName: "a", Status: StatusOK, Output: 9}
	b := &Cell{ID: "b", OutputName: "b", InputNames: []string{"a"}, Status: StatusExpired}

	tests := []struct {
		name        string
		old         *Notebook
		new         *Notebook
		wantNil     bool
		wantName    *string
		wantCells   []string
		wantRemoved []string
		wantOrder   []string
	}{
		{
			name:      "Initial Load (Old is Nil)",
			old:       nil,
			new:       nb("n", a, b),
			wantName:  &[]string{"n"}[0],
			wantCells: []string{"a", "b"},
			wantOrder: []string{"a", "b"},
		},
		{
			name:    "No Changes",
			old:     nb("n", a.Clone(), b.Clone()),
			new:     nb("n", a.Clone(), b.Clone()),
			wantNil: true,
		},
		{
			name: "Status Change",
			old:  nb("n", a.Clone(), b.Clone()),
			new: func() *Notebook {
				changed := b.Clone()
				changed.Status = StatusOK
				changed.Output = 18
				return nb("n", a.Clone(), changed)
			}(),
			wantCells: []string{"b"},
		},
		{
			name:      "Input Names Change",
			old:       nb("n", a.Clone(), &Cell{ID: "b", InputNames: []string{"a"}}),
			new:       nb("n", a.Clone(), &Cell{ID: "b", InputNames: []string{}}),
			wantCells: []string{"b"},
		},
		{
			name:      "Reorder",
			old:       nb("n", a.Clone(), b.Clone()),
			new:       nb("n", b.Clone(), a.Clone()),
			wantOrder: []string{"b", "a"},
		},
		{
			name:        "Deletion",
			old:         nb("n", a.Clone(), b.Clone()),
			new:         nb("n", a.Clone()),
			wantRemoved: []string{"b"},
			wantOrder:   []string{"a"},
		},
		{
			name:     "Rename",
			old:      nb("old", a.Clone()),
			new:      nb("new", a.Clone()),
			wantName: &[]string{"new"}[0],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want a diff")
			}

			if got.NotebookID != "nb-1" {
				t.Errorf("Diff().NotebookID = %v, want nb-1", got.NotebookID)
			}
			if !equalPtr(got.Name, tt.wantName) {
				t.Errorf("Diff().Name = %v, want %v", got.Name, tt.wantName)
			}

			var ids []string
			for _, c := range got.Cells {
				ids = append(ids, c.ID)
			}
			if !reflect.DeepEqual(ids, tt.wantCells) {
				t.Errorf("Diff().Cells = %v, want %v", ids, tt.wantCells)
			}
			if !reflect.DeepEqual(got.Removed, tt.wantRemoved) {
				t.Errorf("Diff().Removed = %v, want %v", got.Removed, tt.wantRemoved)
			}
			if !reflect.DeepEqual(got.Order, tt.wantOrder) {
				t.Errorf("Diff().Order = %v, want %v", got.Order, tt.wantOrder)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		old := nb("n", &Cell{ID: "a", Status: StatusExpired})
		cur := nb("n", &Cell{ID: "a", Status: StatusOK, Output: "x"})
		diff := Diff(old, cur)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		s := string(bytes)
		for _, field := range []string{`"name"`, `"order"`, `"removed"`} {
			if strings.Contains(s, field) {
				t.Errorf("JSON should not contain %s when unchanged, got: %s", field, s)
			}
		}
		if !strings.Contains(s, `"status":"ok"`) {
			t.Errorf("JSON should contain the new status, got: %s", s)
		}
	})
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
