package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"samarkand-dashboard/internal/common/logger"
	"samarkand-dashboard/internal/common/metrics"
	"samarkand-dashboard/internal/common/observability"
)

// Store resolves dataset keys to tables. Every failure surfaces as an error
// wrapping ErrDatasetNotFound.
type Store struct {
	source      Source
	logger      logger.Logger
	cacheTables bool

	mu          sync.RWMutex
	tables      map[Kind]*Table
	generations map[Kind]uint64 // bumped by Invalidate; a load that raced it is not cached
}

type StoreOption func(*Store)

// WithTableCache keeps loaded tables in memory until Invalidate is called.
func WithTableCache(enabled bool) StoreOption {
	return func(s *Store) { s.cacheTables = enabled }
}

func NewStore(source Source, log logger.Logger, opts ...StoreOption) *Store {
	s := &Store{
		source:      source,
		logger:      log.WithFields(map[string]interface{}{"component": "dataset-store", "source": source.Name()}),
		tables:      make(map[Kind]*Table),
		generations: make(map[Kind]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load resolves key ("hospital", "hospital-data", ...) and loads its table.
func (s *Store) Load(ctx context.Context, key string) (*Table, Kind, error) {
	kind, err := ParseKind(key)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDatasetNotFound, err)
	}
	table, err := s.LoadKind(ctx, kind)
	return table, kind, err
}

func (s *Store) LoadKind(ctx context.Context, kind Kind) (*Table, error) {
	if _, ok := kindInfos[kind]; !ok {
		return nil, fmt.Errorf("%w: %v %q", ErrDatasetNotFound, ErrUnknownDataset, kind)
	}

	var generation uint64
	if s.cacheTables {
		s.mu.RLock()
		table, ok := s.tables[kind]
		generation = s.generations[kind]
		s.mu.RUnlock()
		if ok {
			metrics.DatasetLoads.WithLabelValues(string(kind), "cached").Inc()
			return table, nil
		}
	}

	ctx, span := observability.StartSpan(ctx, "dataset.load",
		attribute.String("dataset", string(kind)),
		attribute.String("source", s.source.Name()),
	)
	defer span.End()

	table, err := s.source.Load(ctx, kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.DatasetLoads.WithLabelValues(string(kind), "failed").Inc()
		s.logger.Warn("dataset load failed", map[string]interface{}{
			"dataset": string(kind),
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s: %v", ErrDatasetNotFound, kind, err)
	}

	metrics.DatasetLoads.WithLabelValues(string(kind), "loaded").Inc()
	span.SetAttributes(attribute.Int("rows", table.Len()))

	if s.cacheTables {
		s.mu.Lock()
		if s.generations[kind] == generation {
			s.tables[kind] = table
		}
		s.mu.Unlock()
	}

	return table, nil
}

// LoadAll loads every dataset, stopping at the first failure.
func (s *Store) LoadAll(ctx context.Context) (map[Kind]*Table, error) {
	out := make(map[Kind]*Table, len(kindInfos))
	for _, kind := range Kinds() {
		table, err := s.LoadKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		out[kind] = table
	}
	return out, nil
}

// Invalidate drops cached tables; with no arguments it drops all of them.
func (s *Store) Invalidate(kinds ...Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(kinds) == 0 {
		kinds = Kinds()
	}
	for _, k := range kinds {
		delete(s.tables, k)
		s.generations[k]++
	}
}

// IsNotFound reports whether err came from a failed dataset lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDatasetNotFound)
}
