package readinglist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/pickpocket/models"
	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// RedisList keeps the reading list in Redis. The list at Key holds URLs top
// first; the hash at Key+":items" maps each URL to its JSON-encoded item.
type RedisList struct {
	client *redis.Client
	key    string
}

// NewRedisList wraps an existing client. An empty key uses models.DefaultRedisKey.
func NewRedisList(client *redis.Client, key string) *RedisList {
	if key == "" {
		key = models.DefaultRedisKey
	}
	return &RedisList{client: client, key: key}
}

// DialRedis connects to the configured server and checks it with a ping.
func DialRedis(ctx context.Context, cfg models.RedisConfig) (*RedisList, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisList(client, cfg.Key), nil
}

func (l *RedisList) itemsKey() string {
	return l.key + ":items"
}

// AddItem moves item.URL to the head of the list and stores the item.
func (l *RedisList) AddItem(ctx context.Context, item models.ReadingListItem) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.LRem(ctx, l.key, 0, item.URL)
	pipe.LPush(ctx, l.key, item.URL)
	pipe.HSet(ctx, l.itemsKey(), item.URL, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

// Items returns up to limit items top first. limit <= 0 returns all of them.
func (l *RedisList) Items(ctx context.Context, limit int) ([]models.ReadingListItem, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	urls, err := l.client.LRange(ctx, l.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if len(urls) == 0 {
		return []models.ReadingListItem{}, nil
	}

	values, err := l.client.HMGet(ctx, l.itemsKey(), urls...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}

	items := make([]models.ReadingListItem, 0, len(urls))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Listed without a stored body; keep the URL.
			items = append(items, models.ReadingListItem{URL: urls[i]})
			continue
		}
		var item models.ReadingListItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal item %s: %w", urls[i], err)
		}
		items = append(items, item)
	}
	return items, nil
}

// GetItem looks up one item by URL.
func (l *RedisList) GetItem(ctx context.Context, rawURL string) (*models.ReadingListItem, error) {
	data, err := l.client.HGet(ctx, l.itemsKey(), rawURL).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("item not found: %s", rawURL)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	var item models.ReadingListItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return &item, nil
}

// RemoveItem drops rawURL from the list. Removing a missing URL is not an error.
func (l *RedisList) RemoveItem(ctx context.Context, rawURL string) error {
	pipe := l.client.TxPipeline()
	pipe.LRem(ctx, l.key, 0, rawURL)
	pipe.HDel(ctx, l.itemsKey(), rawURL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return nil
}

// Count returns the length of the list.
func (l *RedisList) Count(ctx context.Context) (int, error) {
	n, err := l.client.LLen(ctx, l.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return int(n), nil
}

// Clear removes the list and every stored item.
func (l *RedisList) Clear(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key, l.itemsKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear reading list: %w", err)
	}
	return nil
}

// Close releases the client.
func (l *RedisList) Close() error {
	return l.client.Close()
}
