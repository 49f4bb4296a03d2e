package overpass

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	overpass "github.com/serjvanilla/go-overpass"

	"github.com/wanderlust-app/wanderlust/internal/core/domain"
	"github.com/wanderlust-app/wanderlust/internal/pkg/metrics"
)

// Provider implements ports.WayProvider against an Overpass API endpoint.
type Provider struct {
	client  *overpass.Client
	timeout time.Duration
}

// New creates a provider with a bounded HTTP timeout and at most one
// in-flight Overpass request, matching the public endpoints' rate limits.
func New(endpoint string, timeout time.Duration) *Provider {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	client := overpass.NewWithSettings(endpoint, 1, httpClient)
	return &Provider{
		client:  &client,
		timeout: timeout,
	}
}

// FetchWays queries all ways of the given highway classes inside bounds
// and returns them sorted by way ID. Overpass responses carry ways in a
// map, so sorting keeps downstream segment iteration deterministic.
func (p *Provider) FetchWays(ctx context.Context, bounds domain.Bounds, highwayClasses []string) ([]domain.RawWay, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:%d];(way["highway"~"^(%s)$"](%f,%f,%f,%f););out body;>;out skel qt;`,
		int(p.timeout.Seconds()),
		strings.Join(highwayClasses, "|"),
		bounds.South, bounds.West, bounds.North, bounds.East,
	)

	start := time.Now()
	result, err := p.client.Query(query)
	metrics.OverpassFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.OverpassFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}
	metrics.OverpassFetches.WithLabelValues("ok").Inc()

	ways := make([]domain.RawWay, 0, len(result.Ways))
	for _, way := range result.Ways {
		geometry := make([]domain.Position, 0, len(way.Nodes))
		for _, node := range way.Nodes {
			geometry = append(geometry, domain.Position{Lat: node.Lat, Lon: node.Lon})
		}
		ways = append(ways, domain.RawWay{
			ID:       way.ID,
			Name:     way.Tags["name"],
			Highway:  way.Tags["highway"],
			Geometry: geometry,
		})
	}
	sort.Slice(ways, func(i, j int) bool { return ways[i].ID < ways[j].ID })
	return ways, nil
}
