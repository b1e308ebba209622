// Package store persists short URL documents and access-log entries in
// Redis. Documents are JSON blobs keyed by path; secondary hash indexes cover
// lookup by document ID and by destination, and lists keep insertion order
// for paginated reads.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/HaslienFotografene/haslien-short-2/model"
)

const (
	idIndexKey   = "url_id_index" // hash: document ID -> path
	destIndexKey = "dest_index"   // hash: lowercased destination -> path
	pathListKey  = "url_paths"    // list: paths in creation order
	logListKey   = "access_log"   // list: access-log entry IDs in write order
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: path already taken")
)

func urlKey(path string) string {
	return "url:" + strings.ToLower(path)
}

func usesKey(id string) string {
	return "uses:" + id
}

func logKey(id string) string {
	return "log:" + id
}

func logPathListKey(path string) string {
	return logListKey + ":" + strings.ToLower(path)
}

// Store wraps a Redis client with the document operations the service needs.
type Store struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Ping verifies the Redis connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// CreateURL inserts a new document. Path uniqueness is enforced by the
// storage layer: SETNX makes concurrent creates for the same path race-free,
// the loser gets ErrConflict.
func (s *Store) CreateURL(ctx context.Context, doc *model.ShortURL) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	ok, err := s.rdb.SetNX(ctx, urlKey(doc.Path), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	path := strings.ToLower(doc.Path)
	if err := s.rdb.HSet(ctx, idIndexKey, doc.ID, path).Err(); err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, destIndexKey, strings.ToLower(doc.Destination), path).Err(); err != nil {
		return err
	}
	return s.rdb.RPush(ctx, pathListKey, path).Err()
}

// GetURL loads a document by path (case-insensitive) and merges in the live
// usage counter.
func (s *Store) GetURL(ctx context.Context, path string) (*model.ShortURL, error) {
	data, err := s.rdb.Get(ctx, urlKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var doc model.ShortURL
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	uses, err := s.rdb.Get(ctx, usesKey(doc.ID)).Result()
	if err == nil {
		if n, perr := strconv.ParseInt(uses, 10, 64); perr == nil {
			doc.Uses = n
		}
	} else if !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return &doc, nil
}

// PathExists reports whether a document exists for the path.
func (s *Store) PathExists(ctx context.Context, path string) (bool, error) {
	n, err := s.rdb.Exists(ctx, urlKey(path)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DestExists reports whether any document points at the destination.
func (s *Store) DestExists(ctx context.Context, dest string) (bool, error) {
	return s.rdb.HExists(ctx, destIndexKey, strings.ToLower(dest)).Result()
}

// DeleteURL removes a document permanently and returns what was deleted.
func (s *Store) DeleteURL(ctx context.Context, path string) (*model.ShortURL, error) {
	doc, err := s.GetURL(ctx, path)
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(path)
	if err := s.rdb.Del(ctx, urlKey(path), usesKey(doc.ID)).Err(); err != nil {
		return nil, err
	}
	if err := s.rdb.HDel(ctx, idIndexKey, doc.ID).Err(); err != nil {
		return nil, err
	}
	if err := s.rdb.LRem(ctx, pathListKey, 1, lower).Err(); err != nil {
		return nil, err
	}

	// Only drop the destination index entry while it still points at this
	// path; another document may share the destination.
	mapped, err := s.rdb.HGet(ctx, destIndexKey, strings.ToLower(doc.Destination)).Result()
	if err == nil && mapped == lower {
		if err := s.rdb.HDel(ctx, destIndexKey, strings.ToLower(doc.Destination)).Err(); err != nil {
			return nil, err
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return doc, nil
}

// IncrementUses atomically bumps the usage counter of the referenced
// document by one. Unknown IDs are a no-op, not an error.
func (s *Store) IncrementUses(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	_, err := s.rdb.HGet(ctx, idIndexKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	} else if err != nil {
		return err
	}
	return s.rdb.Incr(ctx, usesKey(id)).Err()
}

// ListURLs returns documents in creation order, skip/limit style.
func (s *Store) ListURLs(ctx context.Context, offset, limit int64) ([]model.ShortURL, error) {
	if limit <= 0 {
		return []model.ShortURL{}, nil
	}
	paths, err := s.rdb.LRange(ctx, pathListKey, offset, offset+limit-1).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]model.ShortURL, 0, len(paths))
	for _, p := range paths {
		doc, err := s.GetURL(ctx, p)
		if errors.Is(err, ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// SaveLog persists an access-log entry and records it on the global and
// per-path lists.
func (s *Store) SaveLog(ctx context.Context, entry *model.AccessLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, logKey(entry.ID), data, 0).Err(); err != nil {
		return err
	}
	if err := s.rdb.RPush(ctx, logListKey, entry.ID).Err(); err != nil {
		return err
	}
	return s.rdb.RPush(ctx, logPathListKey(entry.Path), entry.ID).Err()
}

// GetLog loads a single access-log entry by ID.
func (s *Store) GetLog(ctx context.Context, id string) (*model.AccessLog, error) {
	data, err := s.rdb.Get(ctx, logKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var entry model.AccessLog
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// AttachLogUser sets the username on a previously recorded entry once the
// matching login succeeds.
func (s *Store) AttachLogUser(ctx context.Context, id, username string) error {
	entry, err := s.GetLog(ctx, id)
	if err != nil {
		return err
	}
	entry.User = username

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, logKey(id), data, 0).Err()
}

// ListLogs returns access-log entries in write order, skip/limit style.
func (s *Store) ListLogs(ctx context.Context, offset, limit int64) ([]model.AccessLog, error) {
	return s.listLogs(ctx, logListKey, offset, limit)
}

// ListLogsByPath returns the entries recorded for one path.
func (s *Store) ListLogsByPath(ctx context.Context, path string, offset, limit int64) ([]model.AccessLog, error) {
	return s.listLogs(ctx, logPathListKey(path), offset, limit)
}

func (s *Store) listLogs(ctx context.Context, listKey string, offset, limit int64) ([]model.AccessLog, error) {
	if limit <= 0 {
		return []model.AccessLog{}, nil
	}
	ids, err := s.rdb.LRange(ctx, listKey, offset, offset+limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]model.AccessLog, 0, len(ids))
	for _, id := range ids {
		entry, err := s.GetLog(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		} else if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}
