package enums

import "testing"

func TestParseQuoteStatus(t *testing.T) {
	status, err := ParseQuoteStatus("accepted")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != QuoteStatusAccepted {
		t.Fatalf("unexpected status %s", status)
	}

	if _, err := ParseQuoteStatus("archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestQuoteStatusGuards(t *testing.T) {
	if !QuoteStatusDraft.AllowsDeletion() {
		t.Fatal("draft must be deletable")
	}
	for _, s := range []QuoteStatus{QuoteStatusSent, QuoteStatusViewed, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired} {
		if s.AllowsDeletion() {
			t.Fatalf("%s must not be deletable", s)
		}
	}

	if QuoteStatusSent.IsTerminal() || QuoteStatusViewed.IsTerminal() {
		t.Fatal("sent/viewed are not terminal")
	}
	if !QuoteStatusExpired.IsTerminal() {
		t.Fatal("expired is terminal")
	}
}
