package template

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with one JSON string per template and a
// sorted set (scored by creation time) as the list index.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects using a redis:// URL
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, unavailable("ping redis", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) indexKey() string {
	return s.prefix + ":index"
}

func (s *RedisStore) templateKey(id string) string {
	return s.prefix + ":" + id
}

// List reads the index then fetches all documents in one MGET
func (s *RedisStore) List(ctx context.Context) ([]*Template, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, unavailable("list templates", err)
	}

	templates := make([]*Template, 0, len(ids))
	if len(ids) == 0 {
		return templates, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.templateKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable("list templates", err)
	}

	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var tmpl Template
		if err := json.Unmarshal([]byte(str), &tmpl); err != nil {
			return nil, unavailable("decode template", err)
		}
		templates = append(templates, &tmpl)
	}

	return templates, nil
}

// Create writes the document and its index entry in one MULTI/EXEC
func (s *RedisStore) Create(ctx context.Context, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	tmpl := &Template{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	tmpl.apply(f)

	data, err := json.Marshal(tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.templateKey(tmpl.ID), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{
			Score:  float64(tmpl.CreatedAt.UnixNano()),
			Member: tmpl.ID,
		})
		return nil
	})
	if err != nil {
		return nil, unavailable("create template", err)
	}

	return tmpl, nil
}

// UpdateByID rewrites the document with SET XX so a missing key is never created.
// id and createdAt never change, so reading them before the write is race free.
func (s *RedisStore) UpdateByID(ctx context.Context, id string, f Fields) (*Template, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	// Ids are uuids; this also keeps the index key out of reach
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	key := s.templateKey(id)

	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("get template", err)
	}

	var tmpl Template
	if err := json.Unmarshal(raw, &tmpl); err != nil {
		return nil, unavailable("decode template", err)
	}
	tmpl.apply(f)

	data, err := json.Marshal(&tmpl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal template: %w", err)
	}

	ok, err := s.client.SetXX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, unavailable("update template", err)
	}
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}

	return &tmpl, nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
