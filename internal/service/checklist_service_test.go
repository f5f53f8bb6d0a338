package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mkrv/tripledger/internal/models"
)

func TestChecklistLifecycle(t *testing.T) {
	env := newTestEnv(t, 1)
	ctx := context.Background()
	member := env.members[0]

	checklist, err := env.services.Checklists.CreateChecklist(ctx, env.owner.ID, &models.Checklist{
		TripID: env.trip.ID,
		Name:   "Packing",
	})
	if err != nil {
		t.Fatalf("failed to create checklist: %v", err)
	}

	item, err := env.services.Checklists.AddItem(ctx, member.ID, &models.ChecklistItem{
		ChecklistID: checklist.ID,
		Text:        "Sunscreen",
	})
	if err != nil {
		t.Fatalf("failed to add item: %v", err)
	}

	if err := env.services.Checklists.SetItemDone(ctx, member.ID, checklist.ID, item.ID, true); err != nil {
		t.Fatalf("failed to set item done: %v", err)
	}

	lists, err := env.services.Checklists.ListChecklists(ctx, env.owner.ID, env.trip.ID)
	if err != nil {
		t.Fatalf("failed to list checklists: %v", err)
	}
	if len(lists) != 1 || len(lists[0].Items) != 1 {
		t.Fatalf("unexpected checklists: %+v", lists)
	}
	if !lists[0].Items[0].Done {
		t.Error("expected item marked done")
	}

	if err := env.services.Checklists.DeleteChecklist(ctx, member.ID, checklist.ID); err != nil {
		t.Fatalf("failed to delete checklist: %v", err)
	}
}

func TestChecklistForbiddenForNonMember(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	stranger := models.NewUser("stranger@example.com", "Stranger", "hash")
	if err := env.store.CreateUser(ctx, stranger); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := env.services.Checklists.CreateChecklist(ctx, stranger.ID, &models.Checklist{
		TripID: env.trip.ID,
		Name:   "Packing",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

// A caller may only name items that belong to the checklist they were
// authorized against. Pairing their own checklist with another trip's item
// ID must not touch the foreign item.
func TestSetItemDoneRejectsItemFromAnotherChecklist(t *testing.T) {
	env := newTestEnv(t, 0)
	ctx := context.Background()

	ownChecklist, err := env.services.Checklists.CreateChecklist(ctx, env.owner.ID, &models.Checklist{
		TripID: env.trip.ID,
		Name:   "Packing",
	})
	if err != nil {
		t.Fatalf("failed to create checklist: %v", err)
	}

	// A second trip the caller is not a member of, with its own item.
	outsider := models.NewUser("outsider@example.com", "Outsider", "hash")
	if err := env.store.CreateUser(ctx, outsider); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	otherTrip, err := env.services.Trips.CreateTrip(ctx, outsider.ID, &models.Trip{Name: "Porto 2026", BaseCurrency: "EUR"})
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	otherChecklist, err := env.services.Checklists.CreateChecklist(ctx, outsider.ID, &models.Checklist{
		TripID: otherTrip.ID,
		Name:   "Groceries",
	})
	if err != nil {
		t.Fatalf("failed to create checklist: %v", err)
	}
	foreignItem, err := env.services.Checklists.AddItem(ctx, outsider.ID, &models.ChecklistItem{
		ChecklistID: otherChecklist.ID,
		Text:        "Wine",
	})
	if err != nil {
		t.Fatalf("failed to add item: %v", err)
	}

	err = env.services.Checklists.SetItemDone(ctx, env.owner.ID, ownChecklist.ID, foreignItem.ID, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	got, err := env.store.GetChecklist(ctx, otherChecklist.ID)
	if err != nil {
		t.Fatalf("failed to get checklist: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Done {
		t.Errorf("foreign item must be untouched, got %+v", got.Items)
	}
}
