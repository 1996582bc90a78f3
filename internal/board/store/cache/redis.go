package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskboard/internal/board/models"
	id "taskboard/pkg/domain"
	"taskboard/pkg/platform/sentinel"
)

const keyPrefix = "board:"

// setIfNewer writes ARGV[1] unless the cached snapshot already carries a
// version at or above ARGV[2]. Undecodable entries are overwritten.
var setIfNewer = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
  local ok, decoded = pcall(cjson.decode, current)
  if ok and type(decoded) == 'table' then
    local cached = tonumber(decoded['version'])
    if cached and cached >= tonumber(ARGV[2]) then
      return 0
    end
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`)

// RedisCache stores board snapshots as JSON under board:<id>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func boardKey(boardID id.BoardID) string {
	return keyPrefix + boardID.String()
}

// Get returns sentinel.ErrNotFound when the board is not cached.
func (c *RedisCache) Get(ctx context.Context, boardID id.BoardID) (models.BoardSnapshot, error) {
	raw, err := c.client.Get(ctx, boardKey(boardID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.BoardSnapshot{}, sentinel.ErrNotFound
		}
		return models.BoardSnapshot{}, fmt.Errorf("get cached board: %w", err)
	}
	var snap models.BoardSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.BoardSnapshot{}, fmt.Errorf("decode cached board: %w", err)
	}
	return snap, nil
}

// Set caches snap unless a snapshot with the same or a later version is
// already cached, so a slow reader can never replace a newer board. It
// reports whether snap was written.
func (c *RedisCache) Set(ctx context.Context, snap models.BoardSnapshot) (bool, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("encode board: %w", err)
	}
	written, err := setIfNewer.Run(ctx, c.client, []string{boardKey(snap.ID)},
		raw, snap.Version, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("set cached board: %w", err)
	}
	return written == 1, nil
}

func (c *RedisCache) Delete(ctx context.Context, boardID id.BoardID) error {
	if err := c.client.Del(ctx, boardKey(boardID)).Err(); err != nil {
		return fmt.Errorf("delete cached board: %w", err)
	}
	return nil
}
