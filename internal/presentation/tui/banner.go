package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	"  _____                    _ ",
	" |  ___|                  | |",
	" | |__   __ _  ___   ___  | |",
	" |  __| / _` |/ __| / _ \\ | |",
	" | |___| (_| |\\__ \\|  __/ | |",
	" \\____/ \\__,_||___/ \\___| |_|",
}

// Indigo to rose, top to bottom.
var bannerColors = []string{
	"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185",
}

// PrintBanner outputs the Easel ASCII art banner with the version line.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	fmt.Println()
	for i, line := range bannerLines {
		fmt.Println(termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if version != "" {
		fmt.Println(termenv.String("  interaction engine " + version).Foreground(p.Color("#6b7280")))
	}
	fmt.Println()
}
