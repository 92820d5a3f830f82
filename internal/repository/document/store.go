// Package document adapts the external bookmark store (Redis) as the search
// core's document source. The search core never writes documents; it reads
// the full current collection on demand and pages in memory.
package document

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/marksearch/marksearch/internal/domain"
)

// mgetChunkSize bounds one MGET round trip.
const mgetChunkSize = 200

// Config holds connection parameters for the bookmark store.
type Config struct {
	Addrs     []string
	Password  string
	KeyPrefix string
}

// Store reads the bookmark collection from Redis via rueidis.
type Store struct {
	client rueidis.Client
	prefix string
	logger *zap.Logger
}

// NewStore connects to the bookmark store.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "marksearch:"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.KeyPrefix, logger: logger}, nil
}

// All returns the full current collection, newest first. Documents that fail
// to parse are skipped with a warning rather than failing the request.
func (s *Store) All(ctx context.Context) ([]domain.Document, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(keys))
	for start := 0; start < len(keys); start += mgetChunkSize {
		end := min(start+mgetChunkSize, len(keys))
		chunk, err := s.fetchChunk(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		docs = append(docs, chunk...)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

func (s *Store) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(s.prefix + "doc:*").Count(512).Build()
		entry, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan documents: %w: %w", domain.ErrStoreUnavailable, err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s *Store) fetchChunk(ctx context.Context, keys []string) ([]domain.Document, error) {
	cmd := s.client.B().Mget().Key(keys...).Build()
	values, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("mget documents: %w: %w", domain.ErrStoreUnavailable, err)
	}

	docs := make([]domain.Document, 0, len(values))
	for i, msg := range values {
		raw, err := msg.ToString()
		if err != nil {
			// Deleted between SCAN and MGET.
			continue
		}
		var dto docDTO
		if err := json.Unmarshal([]byte(raw), &dto); err != nil {
			s.logger.Warn("skipping malformed document", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		docs = append(docs, dto.toDomain())
	}
	return docs, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the store responds or the timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for store: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}
