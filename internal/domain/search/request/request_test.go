package request

import (
	"errors"
	"testing"

	"github.com/crimedex/crimedex/internal/domain"
	"github.com/crimedex/crimedex/internal/domain/search/filter"
)

func mustRequest(t *testing.T, text string, f filter.Filters, sort string, page, limit int) Request {
	t.Helper()
	r, err := New(text, f, sort, page, limit)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name  string
		page  int
		limit int
	}{
		{"zero page", 0, 20},
		{"negative page", -1, 20},
		{"zero limit", 1, 0},
		{"limit over max", 1, MaxLimit + 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New("ted bundy", nil, "", tc.page, tc.limit)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNew_DefaultSort(t *testing.T) {
	r := mustRequest(t, "ted bundy", nil, "", 1, 20)
	if r.Sort() != DefaultSort {
		t.Fatalf("Sort() = %q, want %q", r.Sort(), DefaultSort)
	}
}

func TestNormalizedText(t *testing.T) {
	r := mustRequest(t, "  Ted   BUNDY ", nil, "", 1, 20)
	if got := r.NormalizedText(); got != "ted bundy" {
		t.Fatalf("NormalizedText() = %q", got)
	}
}

func TestCacheKey_SemanticEquality(t *testing.T) {
	a := mustRequest(t, "Ted Bundy", filter.Filters{
		"platform": {"netflix", "hulu"},
	}, "relevance", 1, 20)
	b := mustRequest(t, "  ted   bundy ", filter.Filters{
		"platform": {"HULU", "Netflix", "hulu"},
	}, "relevance", 1, 20)

	if a.CacheKey() != b.CacheKey() {
		t.Error("semantically identical requests produced different cache keys")
	}
}

func TestCacheKey_Idempotent(t *testing.T) {
	r := mustRequest(t, "ted bundy", filter.Filters{"kind": {"series"}}, "", 1, 20)
	if r.CacheKey() != r.CacheKey() {
		t.Error("CacheKey is not a pure function")
	}
}

func TestCacheKey_DiffersPerField(t *testing.T) {
	base := mustRequest(t, "ted bundy", filter.Filters{"kind": {"series"}}, "relevance", 1, 20)

	variants := []Request{
		mustRequest(t, "jeffrey dahmer", filter.Filters{"kind": {"series"}}, "relevance", 1, 20),
		mustRequest(t, "ted bundy", filter.Filters{"kind": {"podcast"}}, "relevance", 1, 20),
		mustRequest(t, "ted bundy", filter.Filters{"kind": {"series"}}, "year", 1, 20),
		mustRequest(t, "ted bundy", filter.Filters{"kind": {"series"}}, "relevance", 2, 20),
		mustRequest(t, "ted bundy", filter.Filters{"kind": {"series"}}, "relevance", 1, 40),
	}
	for i, v := range variants {
		if v.CacheKey() == base.CacheKey() {
			t.Errorf("variant %d produced the same cache key as base", i)
		}
	}
}

func TestNew_ClonesFilters(t *testing.T) {
	f := filter.Filters{"platform": {"netflix"}}
	r := mustRequest(t, "ted bundy", f, "", 1, 20)
	key := r.CacheKey()

	f["platform"][0] = "hulu"
	if r.CacheKey() != key {
		t.Error("mutating caller filters changed the request cache key")
	}
}
