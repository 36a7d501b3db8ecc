package pagination

import "testing"

func TestNormalize(t *testing.T) {
	page := Page{Limit: -5, Offset: -3}.Normalize()
	if page.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", page.Limit)
	}
	if page.Offset != 0 {
		t.Fatalf("expected zero offset, got %d", page.Offset)
	}

	page = Page{Limit: 10_000, Offset: 40}.Normalize()
	if page.Limit != MaxLimit {
		t.Fatalf("expected capped limit, got %d", page.Limit)
	}
	if page.Offset != 40 {
		t.Fatalf("offset should pass through, got %d", page.Offset)
	}
}

func TestHasMore(t *testing.T) {
	page := Page{Limit: 25, Offset: 0}
	if !HasMore(26, page) {
		t.Fatal("expected more rows past the first page")
	}
	if HasMore(25, page) {
		t.Fatal("exact page boundary has no more rows")
	}
}
