package result

import (
	"testing"

	"github.com/crimedex/crimedex/internal/domain"
)

func TestHasNext(t *testing.T) {
	cases := []struct {
		name               string
		total, page, limit int
		want               bool
	}{
		{"first of many", 137, 1, 20, true},
		{"middle page", 137, 6, 20, true},
		{"last partial page", 137, 7, 20, false},
		{"exact boundary", 40, 2, 20, false},
		{"empty result", 0, 1, 20, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := New(nil, tc.total, tc.page, tc.limit)
			if got := r.HasNext(); got != tc.want {
				t.Errorf("HasNext() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	items := []domain.ContentSummary{{ID: "c1", Title: "Conversations with a Killer"}}
	r := New(items, 137, 1, 20)
	if len(r.Items) != 1 || r.Total != 137 || r.Page != 1 || r.Limit != 20 {
		t.Fatalf("unexpected result: %+v", r)
	}
}
