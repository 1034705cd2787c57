// README: Place lookup via Google Places; failures fall back to echoing the query.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Place is a simplified location result. MapLink is empty when the lookup had
// nothing better than the raw query.
type Place struct {
	Address string
	MapLink string
}

// PlacesService resolves free-form location queries to addresses. With no API
// key it runs in fallback mode and simply echoes queries back, so order
// creation never depends on the lookup succeeding.
type PlacesService struct {
	client *maps.Client
}

func NewPlacesService(apiKey string) (*PlacesService, error) {
	if apiKey == "" {
		return &PlacesService{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// FindPlace returns the best address for a query. Lookup failure is non-fatal:
// the raw query comes back as the address with no map link.
func (s *PlacesService) FindPlace(ctx context.Context, query string) Place {
	fallback := Place{Address: query}
	if s.client == nil || query == "" {
		return fallback
	}

	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{Query: query})
	if err != nil || len(resp.Results) == 0 {
		return fallback
	}

	top := resp.Results[0]
	address := top.FormattedAddress
	if address == "" {
		address = query
	}
	var link string
	if top.PlaceID != "" {
		link = "https://www.google.com/maps/place/?q=place_id:" + top.PlaceID
	}
	return Place{Address: address, MapLink: link}
}
