package domain

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// LocalityResolver resolves a coordinate to a human-readable place name.
// Implementations are expected to memoize results; a failed lookup resolves
// to the UnknownLocality sentinel rather than an error.
type LocalityResolver interface {
	Resolve(ctx context.Context, lat, lon float64) string
}

// ResolveLocalities resolves a place name for every point, running at most
// limit lookups concurrently. Results land in input order. A nil resolver
// marks every point UnknownLocality.
func ResolveLocalities(ctx context.Context, points []SamplePoint, resolver LocalityResolver, limit int, logger *slog.Logger) []SamplePoint {
	if resolver == nil {
		for i := range points {
			points[i].Locality = UnknownLocality
		}
		return points
	}
	if limit < 1 {
		limit = 1
	}

	names := make([]string, len(points))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range points {
		g.Go(func() error {
			names[i] = resolver.Resolve(ctx, points[i].Lat, points[i].Lon)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	if err := g.Wait(); err != nil {
		logger.Warn("locality resolution interrupted", "error", err)
	}

	for i := range points {
		points[i].Locality = names[i]
	}
	return points
}
