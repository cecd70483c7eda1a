package hn

import (
	"testing"
)

func TestExtractJobFields(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected JobFields
	}{
		{
			name:     "empty text leaves everything unset",
			text:     "",
			expected: JobFields{},
		},
		{
			name:     "full-time wins over remote",
			text:     "We offer full-time remote positions",
			expected: JobFields{Type: "full-time", Location: "remote"},
		},
		{
			name:     "contract",
			text:     "6 month contract in Berlin",
			expected: JobFields{Type: "contract", Location: "berlin"},
		},
		{
			name:     "no keyword falls back to other",
			text:     "Join our team in London",
			expected: JobFields{Type: "other", Location: "london"},
		},
		{
			name:     "company after hiring",
			text:     "Now hiring Acme engineers, full-time",
			expected: JobFields{Type: "full-time", Company: "acme"},
		},
		{
			name:     "hiring at end of text",
			text:     "We are hiring",
			expected: JobFields{Type: "other"},
		},
		{
			name:     "salary range with hyphen",
			text:     "full-time, salary 90000-120000 DOE",
			expected: JobFields{Type: "full-time", SalaryRange: "90000-120000"},
		},
		{
			name:     "salary without hyphen is dropped",
			text:     "full-time, salary negotiable",
			expected: JobFields{Type: "full-time"},
		},
		{
			name: "everything at once",
			text: "Acme is hiring BackendDevs in San Francisco. Full-time. Salary 150k-180k.",
			expected: JobFields{
				Type:        "full-time",
				Location:    "san francisco",
				Company:     "backenddevs",
				SalaryRange: "150k-180k.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJobFields(tt.text)
			if got != tt.expected {
				t.Errorf("ExtractJobFields(%q) = %+v, want %+v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestItemKind(t *testing.T) {
	tests := []struct {
		itemType string
		expected ItemKind
	}{
		{"story", KindStory},
		{"comment", KindComment},
		{"job", KindJob},
		{"poll", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		item := &Item{ID: 1, Type: tt.itemType}
		if got := item.Kind(); got != tt.expected {
			t.Errorf("Kind() for type %q = %q, want %q", tt.itemType, got, tt.expected)
		}
	}
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{name: "valid story", item: Item{ID: 1, Type: "story", Title: "T"}},
		{name: "story without title", item: Item{ID: 1, Type: "story"}, wantErr: true},
		{name: "deleted story without title", item: Item{ID: 1, Type: "story", Deleted: true}},
		{name: "comment without body or author", item: Item{ID: 2, Type: "comment"}},
		{name: "missing id", item: Item{Type: "story", Title: "T"}, wantErr: true},
		{name: "unknown type", item: Item{ID: 3, Type: "pollopt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestItemCreatedAt(t *testing.T) {
	item := &Item{ID: 1, Time: 1700000000}
	got := item.CreatedAt()
	if got.Unix() != 1700000000 {
		t.Errorf("CreatedAt().Unix() = %d, want 1700000000", got.Unix())
	}
	if got.Location() != got.UTC().Location() {
		t.Error("CreatedAt() should be UTC")
	}
}
