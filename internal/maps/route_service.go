// README: Driving-distance estimates between pickup and drop addresses.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// RouteService estimates the driving distance used for fare quotes when the
// client does not supply one.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(apiKey string) (*RouteService, error) {
	if apiKey == "" {
		return &RouteService{}, nil
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// EstimateDistanceKm returns the driving distance from origin to destination.
// Without an API key (or when no route is found) it returns an error; callers
// should then require an explicit distance from the client.
func (s *RouteService) EstimateDistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	if s.client == nil {
		return 0, fmt.Errorf("route estimates unavailable: no maps api key")
	}
	routes, _, err := s.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, fmt.Errorf("no route found")
	}
	return float64(routes[0].Legs[0].Distance.Meters) / 1000.0, nil
}
