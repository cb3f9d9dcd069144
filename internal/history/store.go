// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

// Package history keeps the bounded, time-ordered log of metric snapshots
// per entity. Projects are keyed by numeric id as string, categories by
// category name; both share the same store mechanics and the same document
// shape (entity id -> entry list).
//
// Each append stamps the current time and trims the list to the newest
// HistoryLimit entries, so history is timestamp-ascending by construction.
package history

import (
	"context"
	"sort"
	"time"

	"github.com/tomtom215/annolytics/internal/docstore"
	"github.com/tomtom215/annolytics/internal/models"
)

// Persisted document keys.
const (
	ProjectDocKey  = "project_history"
	CategoryDocKey = "category_history"
)

type document map[string][]models.HistoryEntry

// Store is a bounded history log for one entity kind.
type Store struct {
	docs   *docstore.Store
	docKey string
	limit  int
	now    func() time.Time
}

// NewProjectStore returns the history store for projects.
func NewProjectStore(docs *docstore.Store) *Store {
	return newStore(docs, ProjectDocKey)
}

// NewCategoryStore returns the history store for categories.
func NewCategoryStore(docs *docstore.Store) *Store {
	return newStore(docs, CategoryDocKey)
}

func newStore(docs *docstore.Store, docKey string) *Store {
	return &Store{
		docs:   docs,
		docKey: docKey,
		limit:  models.HistoryLimit,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source. Tests only.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Append adds a snapshot to the entity's history, stamped with the current
// time, and trims the list to the newest entries.
func (s *Store) Append(ctx context.Context, entityID string, snapshot models.MetricsSnapshot) error {
	return docstore.Update(ctx, s.docs, s.docKey, document{}, func(doc *document) error {
		s.appendLocked(doc, entityID, snapshot, s.now())
		return nil
	})
}

// AppendBulk appends one snapshot per entity in a single read-modify-write
// cycle of the backing document. All entries in one bulk call share the same
// timestamp. This reduces I/O amplification versus per-entity appends but
// offers no atomicity beyond the whole-document replace.
func (s *Store) AppendBulk(ctx context.Context, snapshots map[string]models.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return docstore.Update(ctx, s.docs, s.docKey, document{}, func(doc *document) error {
		now := s.now()
		for entityID, snapshot := range snapshots {
			s.appendLocked(doc, entityID, snapshot, now)
		}
		return nil
	})
}

func (s *Store) appendLocked(doc *document, entityID string, snapshot models.MetricsSnapshot, now time.Time) {
	entries := append((*doc)[entityID], models.HistoryEntry{
		Timestamp: now,
		Metrics:   snapshot,
	})
	if len(entries) > s.limit {
		entries = entries[len(entries)-s.limit:]
	}
	(*doc)[entityID] = entries
}

// Get returns the entity's history, oldest first. An unseen entity yields an
// empty list, not an error.
func (s *Store) Get(ctx context.Context, entityID string) ([]models.HistoryEntry, error) {
	doc := document{}
	if _, err := s.docs.Read(ctx, s.docKey, &doc); err != nil {
		return nil, err
	}
	entries := doc[entityID]
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// Latest returns the entity's most recent history entry. The second return
// is false when the entity has no history.
func (s *Store) Latest(ctx context.Context, entityID string) (models.HistoryEntry, bool, error) {
	entries, err := s.Get(ctx, entityID)
	if err != nil {
		return models.HistoryEntry{}, false, err
	}
	if len(entries) == 0 {
		return models.HistoryEntry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}

// All returns every entity's history. Used by the time-series backfill and
// the category aggregator.
func (s *Store) All(ctx context.Context) (map[string][]models.HistoryEntry, error) {
	doc := document{}
	if _, err := s.docs.Read(ctx, s.docKey, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// MergeEntries combines two entry lists, de-duplicating by exact timestamp
// and re-sorting ascending. Used by migration and backfill paths.
func MergeEntries(a, b []models.HistoryEntry) []models.HistoryEntry {
	seen := make(map[int64]struct{}, len(a)+len(b))
	merged := make([]models.HistoryEntry, 0, len(a)+len(b))
	for _, list := range [][]models.HistoryEntry{a, b} {
		for _, entry := range list {
			key := entry.Timestamp.UnixNano()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, entry)
		}
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}
