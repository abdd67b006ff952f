package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/entity"
	"github.com/bajajharsha/Textile-Order-and-Beam-Allocation-System-sub001/internal/production/testutil"
	"github.com/google/uuid"
)

func TestEditLogRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewRepositories(db).EditLog
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	seed := []struct {
		lotID   int
		session string
		state   entity.EditState
		value   string
	}{
		{1000, "s1", entity.EditCommitted, "B-1"},
		{1000, "s1", entity.EditReverted, "B-2"},
		{1000, "s2", entity.EditCommitted, "B-3"},
		{1001, "s1", entity.EditCommitted, "7"},
	}
	for i, s := range seed {
		edit := &entity.LotFieldEdit{
			ID:        uuid.New().String(),
			EditID:    uuid.New().String(),
			SessionID: s.session,
			LotID:     s.lotID,
			Field:     "bill_number",
			NewValue:  s.value,
			State:     s.state,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, edit); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	edits, err := repo.ListByLot(ctx, 1000, 0)
	if err != nil {
		t.Fatalf("ListByLot failed: %v", err)
	}
	if len(edits) != 3 || edits[0].NewValue != "B-3" {
		t.Fatalf("Expected 3 edits newest first, got %+v", edits)
	}

	limited, _ := repo.ListByLot(ctx, 1000, 1)
	if len(limited) != 1 {
		t.Fatalf("Limit not applied, got %d", len(limited))
	}

	bySession, _ := repo.ListBySession(ctx, "s1", 0)
	if len(bySession) != 3 {
		t.Fatalf("Expected 3 edits for s1, got %d", len(bySession))
	}

	counts, err := repo.CountByState(ctx, 1000)
	if err != nil {
		t.Fatalf("CountByState failed: %v", err)
	}
	if counts[entity.EditCommitted] != 2 || counts[entity.EditReverted] != 1 {
		t.Fatalf("Unexpected counts: %v", counts)
	}
}
