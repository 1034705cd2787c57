// README: Fallback-mode tests; no API key means queries echo back.
package maps

import (
	"context"
	"testing"
)

func TestFindPlaceFallsBackWithoutClient(t *testing.T) {
	svc, err := NewPlacesService("")
	if err != nil {
		t.Fatalf("new places service: %v", err)
	}

	p := svc.FindPlace(context.Background(), "Tech Park, Gate 4")
	if p.Address != "Tech Park, Gate 4" {
		t.Errorf("expected query echoed back, got %q", p.Address)
	}
	if p.MapLink != "" {
		t.Errorf("expected no map link in fallback mode, got %q", p.MapLink)
	}
}

func TestFindPlaceEmptyQuery(t *testing.T) {
	svc, _ := NewPlacesService("")
	p := svc.FindPlace(context.Background(), "")
	if p.Address != "" || p.MapLink != "" {
		t.Errorf("expected empty place, got %+v", p)
	}
}
