package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "easel",
	Short: "Easel is an interaction engine for infrastructure diagrams",
	Long: `Easel drives the pointer interactions of an infrastructure diagram
editor: selection, dragging, connecting, pan and zoom, node placement and
edit sessions. Diagrams are plain YAML documents.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("diagram", "d", "diagram.yaml", "Path to the diagram document")
	rootCmd.PersistentFlags().String("palette", "", "Path to a Loam palette directory (defaults to 'palette' next to the diagram)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// engineConfig collects the persistent engine flags.
func engineConfig(cmd *cobra.Command) cli.EngineConfig {
	diagram, _ := cmd.Flags().GetString("diagram")
	palette, _ := cmd.Flags().GetString("palette")
	return cli.EngineConfig{
		DiagramPath: diagram,
		PalettePath: palette,
	}
}
