// Annolytics - Annotation Analytics and Growth Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/annolytics

package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/annolytics/internal/docstore"
	lsmodels "github.com/tomtom215/annolytics/internal/models/labelstudio"
)

func newTestStore(t *testing.T) *docstore.Store {
	t.Helper()
	docs, err := docstore.Open(docstore.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	return docs
}

func TestAssignmentStore_ResolvePersistsDetection(t *testing.T) {
	ctx := context.Background()
	s := NewAssignmentStore(newTestStore(t), NewModalityDetector(nil))

	got, err := s.Resolve(ctx, "7", "OPG Batch 1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != ModalityOPG {
		t.Fatalf("Resolve = %q, want %q", got, ModalityOPG)
	}

	// A later resolve with a different title must return the stored value,
	// not re-detect.
	got, err = s.Resolve(ctx, "7", "Bitewing Batch 1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != ModalityOPG {
		t.Errorf("second Resolve = %q, want stored %q", got, ModalityOPG)
	}
}

func TestAssignmentStore_OverrideWins(t *testing.T) {
	ctx := context.Background()
	s := NewAssignmentStore(newTestStore(t), NewModalityDetector(nil))

	if _, err := s.Resolve(ctx, "3", "panoramic set"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := s.Override(ctx, "3", ModalityIOPA); err != nil {
		t.Fatalf("Override: %v", err)
	}

	got, err := s.Resolve(ctx, "3", "panoramic set")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != ModalityIOPA {
		t.Errorf("Resolve after override = %q, want %q", got, ModalityIOPA)
	}
}

func TestAssignmentStore_OverrideRejectsUnknownTag(t *testing.T) {
	s := NewAssignmentStore(newTestStore(t), NewModalityDetector(nil))

	err := s.Override(context.Background(), "3", "CBCT")
	if !errors.Is(err, ErrInvalidModality) {
		t.Fatalf("Override = %v, want ErrInvalidModality", err)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected override must not persist, got %v", all)
	}
}

func TestAssignmentStore_ResolveAllFillsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	s := NewAssignmentStore(newTestStore(t), NewModalityDetector(nil))

	if err := s.Override(ctx, "1", ModalityBitewing); err != nil {
		t.Fatalf("Override: %v", err)
	}

	resolved, err := s.ResolveAll(ctx, []lsmodels.Project{
		{ID: 1, Title: "OPG project"},
		{ID: 2, Title: "IOPA project"},
		{ID: 3, Title: "mystery"},
	})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}

	want := map[string]string{"1": ModalityBitewing, "2": ModalityIOPA, "3": ModalityOthers}
	for id, tag := range want {
		if resolved[id] != tag {
			t.Errorf("resolved[%s] = %q, want %q", id, resolved[id], tag)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("stored %d assignments, want 3", len(all))
	}
}
