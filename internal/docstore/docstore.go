// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package docstore is the persistence layer: a key -> JSON document store
// backed by BadgerDB, plus an append-only plain-text log per key.
//
// Every mutation in the system follows the read-modify-write convention via
// Update: load the whole document, mutate it in memory, write it back. There
// is no cross-document transaction and no partial-write guarantee beyond a
// single Badger transaction; components treat each logical key as one
// replaceable document so the backing store can later be swapped without
// touching component code.
//
// Reads retry a bounded number of times with exponential backoff on
// transient errors and surface a hard failure otherwise. A read failure is
// never silently turned into an empty default, which would risk clobbering
// good data on the next write.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/annolytics/internal/logging"
	"github.com/tomtom215/annolytics/internal/metrics"
)

// Key prefixes inside the Badger keyspace.
const (
	docKeyPrefix = "doc:"
	logKeyPrefix = "log:"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("docstore: store is closed")

// Options configures the store.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path string

	// InMemory runs Badger without touching disk. Used by tests.
	InMemory bool

	// ReadRetries bounds the number of retry attempts on transient read
	// errors. Default: 3.
	ReadRetries uint64

	// RetryInterval is the initial backoff between retries. Default: 50ms.
	RetryInterval time.Duration
}

// Store is a Badger-backed document store.
type Store struct {
	db            *badger.DB
	readRetries   uint64
	retryInterval time.Duration

	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

// Open opens (or creates) the store at opts.Path.
func Open(opts Options) (*Store, error) {
	if opts.ReadRetries == 0 {
		opts.ReadRetries = 3
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 50 * time.Millisecond
	}

	badgerOpts := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
	}

	return &Store{
		db:            db,
		readRetries:   opts.ReadRetries,
		retryInterval: opts.RetryInterval,
		seqs:          make(map[string]*badger.Sequence),
	}, nil
}

// Close releases sequences and closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	for key, seq := range s.seqs {
		if err := seq.Release(); err != nil {
			logging.Warn().Err(err).Str("key", key).Msg("Failed to release sequence")
		}
	}
	s.seqs = nil
	s.mu.Unlock()
	return s.db.Close()
}

// Read loads the document stored under key into the value pointed at by
// into. It returns false when no document exists, leaving into untouched so
// the caller's default applies. Transient read errors are retried with
// exponential backoff up to the configured bound; a persistent failure is
// returned as an error, never as "missing".
func (s *Store) Read(ctx context.Context, key string, into interface{}) (bool, error) {
	var found bool

	attempt := func() error {
		return s.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(docKeyPrefix + key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				found = false
				return nil
			}
			if err != nil {
				return fmt.Errorf("get document %q: %w", key, err)
			}
			found = true
			return item.Value(func(val []byte) error {
				if err := json.Unmarshal(val, into); err != nil {
					// Corrupt payloads are permanent; retrying cannot help.
					return backoff.Permanent(fmt.Errorf("unmarshal document %q: %w", key, err))
				}
				return nil
			})
		})
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(s.retryInterval),
		), s.readRetries),
		ctx,
	)
	notify := func(err error, _ time.Duration) {
		metrics.StoreReadRetries.Inc()
		logging.Debug().Err(err).Str("key", key).Msg("Retrying document read")
	}
	if err := backoff.RetryNotify(attempt, policy, notify); err != nil {
		return false, err
	}
	return found, nil
}

// Write replaces the document stored under key.
func (s *Store) Write(ctx context.Context, key string, doc interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(docKeyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	return nil
}

// AppendLine appends one line of plain text to the append-only log stored
// under key. Lines are ordered by a monotonic per-key sequence.
func (s *Store) AppendLine(ctx context.Context, key, line string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	seq, err := s.sequence(key)
	if err != nil {
		return err
	}
	n, err := seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence for log %q: %w", key, err)
	}
	entryKey := fmt.Sprintf("%s%s:%020d", logKeyPrefix, key, n)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(entryKey), []byte(line))
	})
	if err != nil {
		return fmt.Errorf("append to log %q: %w", key, err)
	}
	return nil
}

// ReadLines returns up to limit most recent lines from the log stored under
// key, oldest first. limit <= 0 returns all lines.
func (s *Store) ReadLines(ctx context.Context, key string, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lines []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(logKeyPrefix + key + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				lines = append(lines, string(val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read log %q: %w", key, err)
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, nil
}

func (s *Store) sequence(key string) (*badger.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seqs == nil {
		return nil, ErrClosed
	}
	if seq, ok := s.seqs[key]; ok {
		return seq, nil
	}
	seq, err := s.db.GetSequence([]byte("seq:"+key), 64)
	if err != nil {
		return nil, fmt.Errorf("open sequence for log %q: %w", key, err)
	}
	s.seqs[key] = seq
	return seq, nil
}

// Update performs the read-modify-write cycle for the document under key:
// load (or start from def when missing), apply fn, write back. The cycle is
// not atomic beyond the final whole-document replace; concurrent writers of
// the same key are resolved last-write-wins.
func Update[T any](ctx context.Context, s *Store, key string, def T, fn func(doc *T) error) error {
	doc := def
	if _, err := s.Read(ctx, key, &doc); err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.Write(ctx, key, doc)
}
