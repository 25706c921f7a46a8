package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kinobilet/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	moviesKey  = "catalog:movies"
	cinemasKey = "catalog:cinemas"
)

// Config - настройки кеша каталога
type Config struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// CatalogCache keeps the movie and cinema listings of the cinema API in Valkey/Redis.
// A nil *CatalogCache is a valid, always-missing cache.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache connects to Valkey. It returns nil without error when the cache is disabled.
func NewCatalogCache(cfg Config) (*CatalogCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return NewCatalogCacheWithClient(rdb, cfg.TTL), nil
}

func NewCatalogCacheWithClient(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) Movies(ctx context.Context) ([]models.Movie, bool) {
	var movies []models.Movie
	return movies, c.get(ctx, moviesKey, &movies)
}

func (c *CatalogCache) SetMovies(ctx context.Context, movies []models.Movie) {
	c.set(ctx, moviesKey, movies)
}

func (c *CatalogCache) Cinemas(ctx context.Context) ([]models.Cinema, bool) {
	var cinemas []models.Cinema
	return cinemas, c.get(ctx, cinemasKey, &cinemas)
}

func (c *CatalogCache) SetCinemas(ctx context.Context, cinemas []models.Cinema) {
	c.set(ctx, cinemasKey, cinemas)
}

func (c *CatalogCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// get reports a hit; lookup and decode errors count as misses.
func (c *CatalogCache) get(ctx context.Context, key string, out any) bool {
	if c == nil {
		return false
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("Catalog cache lookup failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(payload, out); err != nil {
		slog.Warn("Invalid catalog cache entry", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		slog.Warn("Failed to encode catalog cache entry", "key", key, "error", err)
		return
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("Failed to write catalog cache entry", "key", key, "error", err)
	}
}
