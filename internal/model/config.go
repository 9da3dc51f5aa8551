package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// QuietHours suppress reminder notices within a daily window.
type QuietHours struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Start   string `mapstructure:"start" yaml:"start"` // HH:MM
	End     string `mapstructure:"end" yaml:"end"`     // HH:MM
}

// Covers reports whether now falls inside the quiet window. The window
// may cross midnight (21:00 to 08:00). Disabled or malformed windows
// cover nothing.
func (q QuietHours) Covers(now time.Time) bool {
	if !q.Enabled {
		return false
	}
	start, err := time.Parse("15:04", q.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse("15:04", q.End)
	if err != nil {
		return false
	}
	minute := now.Hour()*60 + now.Minute()
	startMin := start.Hour()*60 + start.Minute()
	endMin := end.Hour()*60 + end.Minute()

	if startMin <= endMin {
		return minute >= startMin && minute < endMin
	}
	return minute >= startMin || minute < endMin
}

// AppearanceConfig holds rendering preferences.
type AppearanceConfig struct {
	Theme       string `mapstructure:"theme" yaml:"theme"` // light|dark|system
	AccentColor string `mapstructure:"accent_color" yaml:"accent_color"`
	CompactMode bool   `mapstructure:"compact_mode" yaml:"compact_mode"`
}

// NotificationConfig holds reminder preferences.
type NotificationConfig struct {
	TaskReminders        bool       `mapstructure:"task_reminders" yaml:"task_reminders"`
	DailyCheckInReminder bool       `mapstructure:"daily_check_in_reminder" yaml:"daily_check_in_reminder"`
	QuietHours           QuietHours `mapstructure:"quiet_hours" yaml:"quiet_hours"`
}

// CalendarConfig holds calendar view preferences.
type CalendarConfig struct {
	DefaultView        string `mapstructure:"default_view" yaml:"default_view"` // month|week|day|agenda
	WeekStartDay       string `mapstructure:"week_start_day" yaml:"week_start_day"` // sunday|monday
	TimeFormat         string `mapstructure:"time_format" yaml:"time_format"`       // 12h|24h
	ShowCompletedTasks bool   `mapstructure:"show_completed_tasks" yaml:"show_completed_tasks"`
	HighlightWeekends  bool   `mapstructure:"highlight_weekends" yaml:"highlight_weekends"`
}

// TaskConfig holds task entry defaults.
type TaskConfig struct {
	DefaultDurationMin int    `mapstructure:"default_duration_min" yaml:"default_duration_min"`
	DefaultPriority    string `mapstructure:"default_priority" yaml:"default_priority"`
	AutoCompleteOverdue bool  `mapstructure:"auto_complete_overdue" yaml:"auto_complete_overdue"`
}

// ProductivityConfig holds streak/goal preferences.
type ProductivityConfig struct {
	StreakTracking bool `mapstructure:"streak_tracking" yaml:"streak_tracking"`
	DailyGoal      bool `mapstructure:"daily_goal" yaml:"daily_goal"`
	ShowInsights   bool `mapstructure:"show_insights" yaml:"show_insights"`
}

// WeekStartWeekday maps the configured week start day onto time.Weekday.
// Anything other than "monday" falls back to Sunday.
func (c CalendarConfig) WeekStartWeekday() time.Weekday {
	if c.WeekStartDay == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// AppConfig is the top-level application configuration, persisted as
// YAML. It covers every user-visible setting of the settings screen.
type AppConfig struct {
	DataDir      string             `mapstructure:"data_dir" yaml:"data_dir"`
	Appearance   AppearanceConfig   `mapstructure:"appearance" yaml:"appearance"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Calendar     CalendarConfig     `mapstructure:"calendar" yaml:"calendar"`
	Tasks        TaskConfig         `mapstructure:"tasks" yaml:"tasks"`
	Productivity ProductivityConfig `mapstructure:"productivity" yaml:"productivity"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/lifeos/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "lifeos", "config.yaml")
}

// DefaultDataDir returns where the SQLite database lives by default.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "lifeos")
}

// DefaultAppConfig returns the settings applied when no config file
// exists and when the user resets to defaults.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		DataDir: DefaultDataDir(),
		Appearance: AppearanceConfig{
			Theme:       "system",
			AccentColor: "#3B82F6",
			CompactMode: false,
		},
		Notifications: NotificationConfig{
			TaskReminders:        true,
			DailyCheckInReminder: true,
			QuietHours: QuietHours{
				Enabled: false,
				Start:   "21:00",
				End:     "08:00",
			},
		},
		Calendar: CalendarConfig{
			DefaultView:        "month",
			WeekStartDay:       "sunday",
			TimeFormat:         "12h",
			ShowCompletedTasks: false,
			HighlightWeekends:  true,
		},
		Tasks: TaskConfig{
			DefaultDurationMin: 30,
			DefaultPriority:    string(PriorityMedium),
			AutoCompleteOverdue: false,
		},
		Productivity: ProductivityConfig{
			StreakTracking: true,
			DailyGoal:      true,
			ShowInsights:   true,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("appearance.theme", "system")
	v.SetDefault("appearance.accent_color", "#3B82F6")
	v.SetDefault("notifications.task_reminders", true)
	v.SetDefault("notifications.daily_check_in_reminder", true)
	v.SetDefault("notifications.quiet_hours.start", "21:00")
	v.SetDefault("notifications.quiet_hours.end", "08:00")
	v.SetDefault("calendar.default_view", "month")
	v.SetDefault("calendar.week_start_day", "sunday")
	v.SetDefault("calendar.time_format", "12h")
	v.SetDefault("calendar.highlight_weekends", true)
	v.SetDefault("tasks.default_duration_min", 30)
	v.SetDefault("tasks.default_priority", string(PriorityMedium))
	v.SetDefault("productivity.streak_tracking", true)
	v.SetDefault("productivity.daily_goal", true)
	v.SetDefault("productivity.show_insights", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return DefaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("data_dir", cfg.DataDir)
	v.Set("appearance", cfg.Appearance)
	v.Set("notifications", cfg.Notifications)
	v.Set("calendar", cfg.Calendar)
	v.Set("tasks", cfg.Tasks)
	v.Set("productivity", cfg.Productivity)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
