// Package backup exports and imports the full application state as a
// single JSON document: tasks, check-ins, the checklist section, and
// settings.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nhle/lifeos/internal/model"
	"github.com/nhle/lifeos/internal/store"
)

// FormatVersion identifies the backup document schema.
const FormatVersion = "1.0.0"

var (
	ErrInvalidBackup     = errors.New("backup: invalid backup file")
	ErrUnsupportedFormat = errors.New("backup: unsupported format version")
)

// ChecklistSection groups everything the checklist engine persists.
type ChecklistSection struct {
	Items             []model.ChecklistItem         `json:"items"`
	Streak            model.ChecklistStreak         `json:"streak"`
	ResetTimestamps   model.ResetTimestamps         `json:"resetTimestamps"`
	CompletionHistory []model.DailyCompletionRecord `json:"completionHistory"`
}

// Snapshot is the complete backup document.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportDate time.Time         `json:"exportDate"`
	Tasks      []model.Task      `json:"tasks"`
	CheckIns   []model.CheckIn   `json:"checkIns"`
	Checklists *ChecklistSection `json:"checklists,omitempty"`
	Settings   *model.AppConfig  `json:"settings"`
}

// Filename returns the conventional backup file name for a date,
// lifeos-backup-YYYY-MM-DD.json.
func Filename(now time.Time) string {
	return fmt.Sprintf("lifeos-backup-%s.json", now.Format(model.DateLayout))
}

// Export assembles a snapshot of everything in the store plus the
// current settings.
func Export(ctx context.Context, s store.Store, cfg *model.AppConfig, now time.Time) (*Snapshot, error) {
	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting tasks: %w", err)
	}
	checkIns, err := s.GetCheckIns(ctx, store.CheckInFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting check-ins: %w", err)
	}
	items, err := s.GetChecklistItems(ctx, store.ChecklistFilter{})
	if err != nil {
		return nil, fmt.Errorf("exporting checklist items: %w", err)
	}
	streak, err := s.GetChecklistStreak(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting checklist streak: %w", err)
	}
	timestamps, err := s.GetResetTimestamps(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting reset timestamps: %w", err)
	}
	history, err := s.GetCompletionHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting completion history: %w", err)
	}

	return &Snapshot{
		Version:    FormatVersion,
		ExportDate: now.UTC(),
		Tasks:      tasks,
		CheckIns:   checkIns,
		Checklists: &ChecklistSection{
			Items:             items,
			Streak:            streak,
			ResetTimestamps:   timestamps,
			CompletionHistory: history,
		},
		Settings: cfg,
	}, nil
}

// WriteFile exports the store to path as indented JSON.
func WriteFile(ctx context.Context, s store.Store, cfg *model.AppConfig, path string, now time.Time) error {
	snap, err := Export(ctx, s, cfg, now)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backup: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing backup to %s: %w", path, err)
	}
	return nil
}

// ReadFile parses and validates a backup document from disk.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading backup file %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Validate checks the document before anything touches the store. A
// snapshot that fails here is rejected whole; no partial import.
func (s *Snapshot) Validate() error {
	if s.Version == "" || s.ExportDate.IsZero() {
		return fmt.Errorf("%w: missing version or export date", ErrInvalidBackup)
	}
	if s.Version != FormatVersion {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Version)
	}
	for i, task := range s.Tasks {
		if err := task.Validate(); err != nil {
			return fmt.Errorf("%w: task %d: %v", ErrInvalidBackup, i, err)
		}
	}
	for i, c := range s.CheckIns {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: check-in %d: %v", ErrInvalidBackup, i, err)
		}
	}
	if s.Checklists != nil {
		for i, item := range s.Checklists.Items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("%w: checklist item %d: %v", ErrInvalidBackup, i, err)
			}
		}
	}
	return nil
}

// ImportResult reports what an import changed.
type ImportResult struct {
	TasksAdded        int
	TasksSkipped      int
	CheckInsAdded     int
	CheckInsSkipped   int
	ChecklistReplaced bool
	SettingsApplied   bool
}

// Import applies a validated snapshot to the store. Tasks and
// check-ins merge by identity: records whose ID (tasks) or date
// (check-ins) already exist are skipped, everything else is staged.
// The checklist section replaces the current checklist outright. The
// staged records are applied in one store transaction, so a failing
// row leaves the store exactly as it was. Settings from the snapshot
// are copied into cfg when present; persisting them is the caller's
// concern.
func Import(ctx context.Context, s store.Store, cfg *model.AppConfig, snap *Snapshot) (ImportResult, error) {
	if err := snap.Validate(); err != nil {
		return ImportResult{}, err
	}

	var result ImportResult

	var tasks []model.Task
	for _, task := range snap.Tasks {
		if task.ID != "" {
			if _, err := s.GetTaskByID(ctx, task.ID); err == nil {
				result.TasksSkipped++
				continue
			} else if !errors.Is(err, store.ErrNotFound) {
				return ImportResult{}, fmt.Errorf("importing task %s: %w", task.ID, err)
			}
		}
		tasks = append(tasks, task)
	}

	var checkIns []model.CheckIn
	for _, c := range snap.CheckIns {
		if _, err := s.GetCheckInByDate(ctx, c.Date); err == nil {
			result.CheckInsSkipped++
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return ImportResult{}, fmt.Errorf("importing check-in for %s: %w", c.Date, err)
		}
		checkIns = append(checkIns, c)
	}

	var checklists *store.SnapshotChecklist
	if snap.Checklists != nil {
		checklists = &store.SnapshotChecklist{
			Items:      snap.Checklists.Items,
			Streak:     snap.Checklists.Streak,
			Timestamps: snap.Checklists.ResetTimestamps,
			History:    snap.Checklists.CompletionHistory,
		}
	}

	if err := s.ApplySnapshot(ctx, tasks, checkIns, checklists); err != nil {
		return ImportResult{}, fmt.Errorf("applying backup: %w", err)
	}
	result.TasksAdded = len(tasks)
	result.CheckInsAdded = len(checkIns)
	result.ChecklistReplaced = checklists != nil

	if snap.Settings != nil && cfg != nil {
		*cfg = *snap.Settings
		result.SettingsApplied = true
	}
	return result, nil
}

// ImportFile reads, validates, and applies a backup file.
func ImportFile(ctx context.Context, s store.Store, cfg *model.AppConfig, path string) (ImportResult, error) {
	snap, err := ReadFile(path)
	if err != nil {
		return ImportResult{}, err
	}
	return Import(ctx, s, cfg, snap)
}
