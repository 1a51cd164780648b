package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the viewer. Scene draws the bodies, Header the scene name and
// Alert any status message.
type Theme struct {
	Name   string
	Scene  lipgloss.Color
	Header lipgloss.Color
	Alert  lipgloss.Color
}

var (
	ThemeLab       = Theme{Name: "lab", Scene: "#00ffff", Header: "#ff00ff", Alert: "#ff4444"}
	ThemeBlueprint = Theme{Name: "blueprint", Scene: "#e0f0ff", Header: "#4488ff", Alert: "#ffcc00"}
	ThemeChalk     = Theme{Name: "chalk", Scene: "#f0f0f0", Header: "#aaaaaa", Alert: "#ff8888"}
	ThemePhosphor  = Theme{Name: "phosphor", Scene: "#33ff66", Header: "#99ff99", Alert: "#ffff00"}

	CurrentTheme = ThemeLab

	Themes = []Theme{ThemeLab, ThemeBlueprint, ThemeChalk, ThemePhosphor}
)

// GetTheme returns the named theme, or the lab theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeLab
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}
