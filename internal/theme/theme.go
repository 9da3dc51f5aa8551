package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/lifeos/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorTeal    = lipgloss.AdaptiveColor{Dark: "#4FC7BC", Light: "#2C7A7B"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps full-screen view content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// DimmedStyle de-emphasizes completed entries.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Strikethrough(true)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// StreakStyle highlights streak counters.
var StreakStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorOrange)

// PriorityStyle returns a color-coded style for a task priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch p {
	case model.PriorityCritical:
		return base.Foreground(ColorRed)
	case model.PriorityHigh:
		return base.Foreground(ColorOrange)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// CategoryStyle returns a color-coded style for an activity category.
func CategoryStyle(c model.Category) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch c {
	case model.CategoryWork:
		return base.Foreground(ColorBlue)
	case model.CategoryHealth:
		return base.Foreground(ColorGreen)
	case model.CategoryFinance:
		return base.Foreground(ColorYellow)
	case model.CategoryLearning:
		return base.Foreground(ColorMagenta)
	case model.CategoryRelationships:
		return base.Foreground(ColorRed)
	case model.CategoryPersonalGrowth:
		return base.Foreground(ColorTeal)
	default:
		return base.Foreground(ColorGray)
	}
}

// MoodStyle returns a color-coded style for a check-in mood.
func MoodStyle(m model.Mood) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch m {
	case model.MoodHappy, model.MoodExcited:
		return base.Foreground(ColorYellow)
	case model.MoodCalm, model.MoodProductive:
		return base.Foreground(ColorTeal)
	case model.MoodNeutral:
		return base.Foreground(ColorGray)
	case model.MoodTired:
		return base.Foreground(ColorBlue)
	case model.MoodStressed:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// HeatStyle returns a style for a daily completion percentage cell of
// the calendar heat-map.
func HeatStyle(percentage int) lipgloss.Style {
	base := lipgloss.NewStyle()

	switch {
	case percentage >= 100:
		return base.Foreground(ColorGreen).Bold(true)
	case percentage >= 75:
		return base.Foreground(ColorTeal)
	case percentage >= 50:
		return base.Foreground(ColorYellow)
	case percentage >= 25:
		return base.Foreground(ColorOrange)
	case percentage > 0:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorSubtle)
	}
}

// ProgressBar renders a fixed-width completion bar.
func ProgressBar(percentage, width int) string {
	if width < 2 {
		width = 2
	}
	filled := percentage * width / 100
	if filled > width {
		filled = width
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return HeatStyle(percentage).Render(bar)
}
