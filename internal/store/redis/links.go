package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/goodnews/internal/domain"
	"github.com/MrSnakeDoc/goodnews/internal/errs"
	"github.com/redis/go-redis/v9"
)

// Write modes understood by writeLinkScript.
const (
	modePut    = "put"    // insert or replace by id
	modeAdd    = "add"    // insert only if both id and url are new
	modeUpdate = "update" // replace an existing id
)

// Results returned by writeLinkScript.
const (
	writeOK        = 1
	writeSkipped   = 0
	writeDuplicate = -1
	writeMissing   = -2
)

// writeLinkScript stores one link and its index entries atomically.
//
// KEYS: link key, id set, url hash. ARGV: mode, id, url, json.
var writeLinkScript = redis.NewScript(`
local owner = redis.call('HGET', KEYS[3], ARGV[3])
local exists = redis.call('EXISTS', KEYS[1]) == 1

if ARGV[1] == 'add' then
  if owner or exists then return 0 end
else
  if ARGV[1] == 'update' and not exists then return -2 end
  if owner and owner ~= ARGV[2] then return -1 end
  if exists then
    local prev = cjson.decode(redis.call('GET', KEYS[1]))['url']
    if prev and prev ~= ARGV[3] then redis.call('HDEL', KEYS[3], prev) end
  end
end

redis.call('SET', KEYS[1], ARGV[4])
redis.call('SADD', KEYS[2], ARGV[2])
redis.call('HSET', KEYS[3], ARGV[3], ARGV[2])
return 1
`)

// deleteLinkScript removes a link and the index entries pointing at it.
//
// KEYS: link key, id set, url hash. ARGV: id.
var deleteLinkScript = redis.NewScript(`
local raw = redis.call('GET', KEYS[1])
if raw then
  local u = cjson.decode(raw)['url']
  if u and redis.call('HGET', KEYS[3], u) == ARGV[1] then
    redis.call('HDEL', KEYS[3], u)
  end
end
redis.call('DEL', KEYS[1])
redis.call('SREM', KEYS[2], ARGV[1])
return 1
`)

func (s *Store) writeLink(ctx context.Context, mode string, link *domain.Link) (int64, error) {
	data, err := json.Marshal(link)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal link: %w", err)
	}

	keys := []string{LinkKey(link.ID), AllLinksKey(), LinksByURLKey()}
	res, err := writeLinkScript.Run(ctx, s.client, keys, mode, link.ID, link.URL, data).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to write link %s: %w", link.ID, err)
	}
	return res, nil
}

// Put stores a link in Redis, replacing any record with the same ID.
func (s *Store) Put(ctx context.Context, link *domain.Link) error {
	if link == nil || link.ID == "" {
		return fmt.Errorf("put link: %w", errs.ErrValidation)
	}
	l := link.Clone()
	l.URL = domain.NormalizeURL(l.URL)

	res, err := s.writeLink(ctx, modePut, l)
	if err != nil {
		return err
	}
	if res == writeDuplicate {
		return fmt.Errorf("put link %s: %w", l.ID, errs.ErrDuplicateURL)
	}
	return nil
}

// Get retrieves a link from Redis by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Link, error) {
	data, err := s.client.Get(ctx, LinkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("link %s: %w", id, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return decodeLink(data)
}

// GetByURL retrieves a link through the URL index.
func (s *Store) GetByURL(ctx context.Context, rawURL string) (*domain.Link, error) {
	u := domain.NormalizeURL(rawURL)
	id, err := s.client.HGet(ctx, LinksByURLKey(), u).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("link %s: %w", u, errs.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up url: %w", err)
	}
	return s.Get(ctx, id)
}

// GetAll retrieves all links from Redis
func (s *Store) GetAll(ctx context.Context) ([]*domain.Link, error) {
	ids, err := s.client.SMembers(ctx, AllLinksKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get link IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Link{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = LinkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}

	out := make([]*domain.Link, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Removed between SMEMBERS and MGET
			continue
		}
		link, err := decodeLink([]byte(raw))
		if err != nil {
			continue
		}
		out = append(out, link)
	}
	return out, nil
}

// Update merges patch into an existing link.
func (s *Store) Update(ctx context.Context, id string, patch domain.LinkPatch) (*domain.Link, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(cur, time.Now())
	res, err := s.writeLink(ctx, modeUpdate, cur)
	if err != nil {
		return nil, err
	}
	switch res {
	case writeMissing:
		return nil, fmt.Errorf("update link %s: %w", id, errs.ErrNotFound)
	case writeDuplicate:
		return nil, fmt.Errorf("update link %s: %w", id, errs.ErrDuplicateURL)
	}
	return cur, nil
}

// Delete removes a link from Redis
func (s *Store) Delete(ctx context.Context, id string) error {
	keys := []string{LinkKey(id), AllLinksKey(), LinksByURLKey()}
	if err := deleteLinkScript.Run(ctx, s.client, keys, id).Err(); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

// ImportMany adds each link whose ID and URL are both new.
// Per-record failures are counted as skips.
func (s *Store) ImportMany(ctx context.Context, links []*domain.Link) (domain.ImportResult, error) {
	var res domain.ImportResult
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if link == nil || link.ID == "" {
			res.Skipped++
			continue
		}
		l := link.Clone()
		l.URL = domain.NormalizeURL(l.URL)
		if l.URL == "" {
			res.Skipped++
			continue
		}

		n, err := s.writeLink(ctx, modeAdd, l)
		if err != nil || n != writeOK {
			res.Skipped++
			continue
		}
		res.Added++
	}
	return res, nil
}

// Clear removes every link and both indexes.
func (s *Store) Clear(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, AllLinksKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get link IDs: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, LinkKey(id))
		}
		pipe.Del(ctx, AllLinksKey(), LinksByURLKey())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear links: %w", err)
	}
	return nil
}

func decodeLink(data []byte) (*domain.Link, error) {
	var link domain.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}
	if link.Tags == nil {
		link.Tags = []string{}
	}
	return &link, nil
}
