package pricing

import "testing"

func TestLookupExact(t *testing.T) {
	p, ok := Lookup("gpt-4o")
	if !ok {
		t.Fatal("expected gpt-4o to resolve")
	}
	if p.Input != 2.50 || p.Output != 10.00 {
		t.Fatalf("unexpected gpt-4o pricing: %+v", p)
	}
}

func TestLookupSubstring(t *testing.T) {
	p, ok := Lookup("claude-sonnet-4-20250514-v2")
	if !ok {
		t.Fatal("expected dated variant to resolve via substring")
	}
	if p.Input != 3.00 || p.Output != 15.00 {
		t.Fatalf("expected claude-sonnet-4 pricing, got %+v", p)
	}
}

func TestLookupLongestKeyWins(t *testing.T) {
	// "gpt-4o-mini-2024-07-18" contains both "gpt-4o" and "gpt-4o-mini";
	// the longer key must win.
	p, ok := Lookup("gpt-4o-mini-2024-07-18")
	if !ok {
		t.Fatal("expected mini variant to resolve")
	}
	if p.Input != 0.15 {
		t.Fatalf("expected gpt-4o-mini pricing, got %+v", p)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, ok := Lookup("totally-unknown-model"); ok {
		t.Fatal("expected unknown model to miss")
	}
}

func TestNoCachePriceMeansNoSavings(t *testing.T) {
	p, ok := Lookup("mistral-large")
	if !ok {
		t.Fatal("expected mistral-large to resolve")
	}
	if p.CachedInput != 0 {
		t.Fatalf("expected zero cached price, got %v", p.CachedInput)
	}
}
