package checklist

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
)

// categoryGroup is one category's ordered titles within a tier.
type categoryGroup struct {
	category model.Category
	titles   []string
}

// builtinTemplates is the default checklist, grouped by tier then
// category. Order within a group becomes the initial sort order.
var builtinTemplates = map[model.Frequency][]categoryGroup{
	model.FrequencyDaily: {
		{model.CategoryHealth, []string{
			"Drink 8 glasses of water",
			"Exercise for 30 minutes",
			"Sleep 7+ hours",
			"Take a walk outside",
		}},
		{model.CategoryWork, []string{
			"Review today's priorities",
			"Clear inbox to zero",
			"Complete most important task",
		}},
		{model.CategoryLearning, []string{
			"Read for 20 minutes",
			"Practice a skill",
		}},
		{model.CategoryPersonalGrowth, []string{
			"Write in journal",
			"Meditate for 10 minutes",
		}},
		{model.CategoryRelationships, []string{
			"Reach out to someone",
		}},
	},
	model.FrequencyWeekly: {
		{model.CategoryHealth, []string{
			"Meal prep for the week",
			"Complete 3 workouts",
		}},
		{model.CategoryWork, []string{
			"Plan the week ahead",
			"Review weekly goals",
		}},
		{model.CategoryFinance, []string{
			"Review spending",
		}},
		{model.CategoryRelationships, []string{
			"Quality time with family or friends",
		}},
		{model.CategoryPersonalGrowth, []string{
			"Weekly reflection",
		}},
	},
	model.FrequencyMonthly: {
		{model.CategoryFinance, []string{
			"Pay bills",
			"Review budget",
			"Transfer to savings",
		}},
		{model.CategoryHealth, []string{
			"Measure progress on health goals",
		}},
		{model.CategoryWork, []string{
			"Review monthly objectives",
		}},
		{model.CategoryLearning, []string{
			"Finish a book or course module",
		}},
	},
	model.FrequencyYearly: {
		{model.CategoryHealth, []string{
			"Annual health checkup",
			"Dental cleaning",
		}},
		{model.CategoryFinance, []string{
			"Review insurance policies",
			"File taxes",
			"Rebalance investments",
		}},
		{model.CategoryPersonalGrowth, []string{
			"Set goals for the year",
			"Annual life review",
		}},
	},
}

// Templates expands the built-in template table into checklist items
// without IDs, in tier order then declaration order.
func Templates() []model.ChecklistItem {
	var items []model.ChecklistItem
	for _, freq := range model.Frequencies() {
		order := 0
		for _, group := range builtinTemplates[freq] {
			for _, title := range group.titles {
				order++
				items = append(items, model.ChecklistItem{
					Title:      title,
					Category:   group.category,
					Frequency:  freq,
					SortOrder:  order,
					IsTemplate: true,
				})
			}
		}
	}
	return items
}

// InitializeTemplates loads the built-in checklist on first run. It is
// a no-op when the store is already initialized, so user edits survive
// restarts.
func InitializeTemplates(ctx context.Context, s store.Store) error {
	initialized, err := s.IsChecklistInitialized(ctx)
	if err != nil {
		return err
	}
	if initialized {
		return nil
	}

	for _, item := range Templates() {
		if _, err := s.AddChecklistItem(ctx, item); err != nil {
			return fmt.Errorf("loading template %q: %w", item.Title, err)
		}
	}
	return s.SetChecklistInitialized(ctx, true)
}

// ReinitializeTemplates rebuilds the checklist from the built-in
// templates. Items whose title, category, and frequency match an
// existing item keep that item's ID, completion state, and creation
// time; everything else is replaced. User-added items are dropped.
func ReinitializeTemplates(ctx context.Context, s store.Store) error {
	existing, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		return err
	}

	byKey := make(map[model.TemplateKey]model.ChecklistItem, len(existing))
	for _, item := range existing {
		byKey[item.Key()] = item
	}

	now := time.Now().UTC()
	fresh := Templates()
	for i, item := range fresh {
		if prev, ok := byKey[item.Key()]; ok {
			fresh[i].ID = prev.ID
			fresh[i].Completed = prev.Completed
			fresh[i].CompletedAt = prev.CompletedAt
			fresh[i].CreatedAt = prev.CreatedAt
		} else {
			fresh[i].CreatedAt = now
		}
	}

	if err := s.ReplaceChecklistItems(ctx, fresh); err != nil {
		return err
	}
	return s.SetChecklistInitialized(ctx, true)
}
