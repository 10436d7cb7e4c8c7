package report

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// RepositoryPort is the read surface the service aggregates from.
type RepositoryPort interface {
	SalesRows(ctx context.Context, rng DateRange) ([]Row, error)
	Totals(ctx context.Context, rng DateRange) (Summary, error)
}

// RendererPort turns a dataset into PDF bytes.
type RendererPort interface {
	Render(ctx context.Context, ds Dataset) ([]byte, error)
}

type Service struct {
	logger   *slog.Logger
	repo     RepositoryPort
	cache    *Cache
	renderer RendererPort
}

func NewService(logger *slog.Logger, repo RepositoryPort, cache *Cache, renderer RendererPort) *Service {
	return &Service{logger: logger, repo: repo, cache: cache, renderer: renderer}
}

// Dataset loads the report aggregates, serving from cache when the range was
// computed recently. Rows and totals are fetched concurrently.
func (s *Service) Dataset(ctx context.Context, rng DateRange) (Dataset, error) {
	if err := rng.Validate(); err != nil {
		return Dataset{}, err
	}

	key, err := s.cache.BuildKey(ctx, rng.CacheKeyParts()...)
	if err != nil {
		return Dataset{}, err
	}

	var ds Dataset
	err = s.cache.FetchJSON(ctx, key, &ds, func(ctx context.Context) (any, error) {
		var fresh Dataset
		fresh.Range = rng
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			rows, err := s.repo.SalesRows(gctx, rng)
			if err != nil {
				return err
			}
			fresh.Rows = rows
			return nil
		})
		g.Go(func() error {
			summary, err := s.repo.Totals(gctx, rng)
			if err != nil {
				return err
			}
			fresh.Summary = summary
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	if err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// Generate renders the range's dataset to PDF and names the attachment.
func (s *Service) Generate(ctx context.Context, rng DateRange) (string, []byte, error) {
	ds, err := s.Dataset(ctx, rng)
	if err != nil {
		return "", nil, err
	}
	pdf, err := s.renderer.Render(ctx, ds)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("report generated",
		slog.Int("rows", len(ds.Rows)),
		slog.Int("bytes", len(pdf)))
	return rng.Filename(), pdf, nil
}

// Invalidate orphans cached datasets after an invoice mutation.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}
