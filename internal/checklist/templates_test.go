package checklist_test

import (
	"context"
	"testing"

	"github.com/nhle/lifeos/internal/checklist"
	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
	"github.com/nhle/lifeos/tests/testutil"
)

func TestTemplates(t *testing.T) {
	items := checklist.Templates()
	if len(items) == 0 {
		t.Fatal("no built-in templates")
	}

	perTier := make(map[model.Frequency]int)
	for _, item := range items {
		if item.ID != "" {
			t.Errorf("template %q carries an ID", item.Title)
		}
		if !item.IsTemplate {
			t.Errorf("template %q not flagged as template", item.Title)
		}
		perTier[item.Frequency]++
		if item.SortOrder != perTier[item.Frequency] {
			t.Errorf("template %q sort order = %d, want %d",
				item.Title, item.SortOrder, perTier[item.Frequency])
		}
	}
	for _, freq := range model.Frequencies() {
		if perTier[freq] == 0 {
			t.Errorf("no templates for %s tier", freq)
		}
	}

	again := checklist.Templates()
	if len(again) != len(items) {
		t.Fatalf("expansion not deterministic: %d vs %d", len(again), len(items))
	}
	for i := range items {
		if again[i].Key() != items[i].Key() || again[i].SortOrder != items[i].SortOrder {
			t.Fatalf("expansion order differs at %d: %+v vs %+v", i, again[i], items[i])
		}
	}
}

func TestInitializeTemplatesOnce(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := checklist.InitializeTemplates(ctx, s); err != nil {
		t.Fatalf("InitializeTemplates: %v", err)
	}

	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(items) != len(checklist.Templates()) {
		t.Fatalf("loaded %d items, want %d", len(items), len(checklist.Templates()))
	}

	if err := s.DeleteChecklistItem(ctx, items[0].ID); err != nil {
		t.Fatalf("DeleteChecklistItem: %v", err)
	}

	// Already initialized: the deleted item must stay deleted.
	if err := checklist.InitializeTemplates(ctx, s); err != nil {
		t.Fatalf("InitializeTemplates: %v", err)
	}
	after, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(after) != len(items)-1 {
		t.Errorf("%d items after re-init, want %d", len(after), len(items)-1)
	}
}

func TestReinitializeTemplatesPreservesState(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	if err := checklist.InitializeTemplates(ctx, s); err != nil {
		t.Fatalf("InitializeTemplates: %v", err)
	}
	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}

	toggled, err := s.ToggleChecklistItem(ctx, items[0].ID)
	if err != nil {
		t.Fatalf("ToggleChecklistItem: %v", err)
	}

	custom, err := s.AddChecklistItem(ctx, model.ChecklistItem{
		Title:     "Water the plants",
		Category:  model.CategoryPersonalGrowth,
		Frequency: model.FrequencyDaily,
		SortOrder: 99,
	})
	if err != nil {
		t.Fatalf("AddChecklistItem: %v", err)
	}

	if err := checklist.ReinitializeTemplates(ctx, s); err != nil {
		t.Fatalf("ReinitializeTemplates: %v", err)
	}

	after, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		t.Fatalf("GetChecklistItems: %v", err)
	}
	if len(after) != len(checklist.Templates()) {
		t.Fatalf("%d items after reinit, want %d", len(after), len(checklist.Templates()))
	}

	var foundToggled, foundCustom bool
	for _, item := range after {
		if item.ID == toggled.ID {
			foundToggled = true
			if !item.Completed || item.CompletedAt == nil {
				t.Errorf("matched item %q lost completion state", item.Title)
			}
			if !item.CreatedAt.Equal(toggled.CreatedAt) {
				t.Errorf("matched item %q lost creation time", item.Title)
			}
		}
		if item.ID == custom.ID {
			foundCustom = true
		}
	}
	if !foundToggled {
		t.Error("template item did not keep its ID across reinit")
	}
	if foundCustom {
		t.Error("user-added item survived reinit")
	}
}
