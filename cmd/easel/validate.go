package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the diagram document for structural problems",
	Long: `Parses the diagram file and reports every structural problem in one
pass: duplicate ids, unknown parents, invalid socket directions, dangling
edges and edges that run against their sockets.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Diagram is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("diagram")
	if !cmd.Flags().Changed("diagram") && len(args) > 0 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read diagram: %w", err)
	}
	return validator.ValidateDiagram(data)
}
