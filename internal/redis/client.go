package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client é o espelho opcional de estado do scan: set de IDs já notificados,
// consultável por outros processos. O arquivo de checkpoint continua sendo
// a fonte de verdade.
type Client struct {
	rdb *redis.Client
}

func New(dsn string) (*Client, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = 10
	opts.MinIdleConns = 5
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.ConnMaxLifetime = 30 * time.Minute

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// RDB expõe o client cru para health checks.
func (c *Client) RDB() *redis.Client {
	return c.rdb
}

const notifiedSetKey = "badge_radar:notified_ids"

// MarkNotified adiciona o ID ao espelho do processed set.
func (c *Client) MarkNotified(ctx context.Context, userID string) error {
	return c.rdb.SAdd(ctx, notifiedSetKey, userID).Err()
}

// NotifiedIDs devolve o espelho inteiro, usado no início do scan para
// reidratar um checkpoint local perdido.
func (c *Client) NotifiedIDs(ctx context.Context) ([]string, error) {
	return c.rdb.SMembers(ctx, notifiedSetKey).Result()
}
