package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/tui"
	"github.com/aretw0/easel/pkg/catalog"
)

var paletteCmd = &cobra.Command{
	Use:   "palette [query]",
	Short: "List or search the node palette",
	Long: `List the palette entries available for node placement, optionally
filtered by a fuzzy query. Entries come from the Loam palette directory
given with --palette, or from a 'palette' directory next to the diagram.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog(cmd)

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		entries := cat.Search(query)
		if len(entries) == 0 {
			fmt.Printf("No palette entries match '%s'.\n", query)
			return
		}

		fmt.Printf("Palette (%d entries):\n", len(entries))
		for _, e := range entries {
			fmt.Printf("- %-24s [%s]\n", e.Name, entryLabel(e))
		}
	},
}

var paletteShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a palette entry's documentation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat := loadCatalog(cmd)

		entry, ok := cat.Get(args[0])
		if !ok {
			// A close fuzzy hit beats an error for a near-miss name.
			if hits := cat.Search(args[0]); len(hits) > 0 {
				entry, ok = hits[0], true
			}
		}
		if !ok {
			fmt.Printf("No palette entry named '%s'.\n", args[0])
			os.Exit(1)
		}

		fmt.Printf("%s [%s]\n", entry.Name, entryLabel(entry))
		if entry.Width > 0 || entry.Height > 0 {
			fmt.Printf("Size: %gx%g\n", entry.Width, entry.Height)
		}
		if len(entry.Sockets) > 0 {
			specs := make([]string, len(entry.Sockets))
			for i, s := range entry.Sockets {
				specs[i] = fmt.Sprintf("%s (%s)", s.Name, s.Direction)
			}
			fmt.Printf("Sockets: %s\n", strings.Join(specs, ", "))
		}

		if entry.Description == "" {
			fmt.Println("\nNo documentation for this entry.")
			return
		}
		render := tui.NewRenderer()
		out, err := render(entry.Description)
		if err != nil {
			fmt.Println("\n" + entry.Description)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	paletteCmd.AddCommand(paletteShowCmd)
}

func entryLabel(e catalog.Entry) string {
	if e.Category != "" {
		return e.Category + "/" + e.Type
	}
	return e.Type
}

func loadCatalog(cmd *cobra.Command) *catalog.Catalog {
	path := cli.ResolvePalettePath(engineConfig(cmd))
	if path == "" {
		fmt.Println("No palette found. Pass --palette or keep a 'palette' directory next to the diagram.")
		os.Exit(1)
	}
	cat, err := cli.LoadPalette(cmd.Context(), path)
	if err != nil {
		fmt.Printf("Error loading palette: %v\n", err)
		os.Exit(1)
	}
	return cat
}
