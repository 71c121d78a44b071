package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/cli"
	"github.com/aretw0/easel/internal/presentation/graph"
	"github.com/aretw0/easel/pkg/scene"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the diagram as a Mermaid graph",
	Long:  `Loads the diagram document and prints a Mermaid flowchart (graph TD) of its nodes, groups and edges.`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := cli.NewEngine(engineConfig(cmd), nil)
		if err != nil {
			fmt.Printf("Error initializing easel: %v\n", err)
			os.Exit(1)
		}

		var output string
		engine.Snapshot(func(d *scene.Diagram) {
			output = graph.GenerateMermaid(d, nil)
		})
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
