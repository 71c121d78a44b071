package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/cli"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a gesture script against a diagram",
	Long: `Feeds a scripted pointer sequence into the engine step by step,
printing the machine state after every input. With --render each scene
mutation is repainted as a character grid.`,
	Run: func(cmd *cobra.Command, args []string) {
		script, _ := cmd.Flags().GetString("script")
		if !cmd.Flags().Changed("script") && len(args) > 0 {
			script = args[0]
		}
		if script == "" {
			fmt.Println("Error: a gesture script is required (--script or argument)")
			os.Exit(1)
		}

		render, _ := cmd.Flags().GetBool("render")
		debug, _ := cmd.Flags().GetBool("debug")

		opts := cli.ReplayOptions{
			EngineConfig: engineConfig(cmd),
			ScriptPath:   script,
			Render:       render,
			Debug:        debug,
		}
		if err := cli.Replay(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringP("script", "s", "", "Path to the gesture script")
	replayCmd.Flags().Bool("render", false, "Render the scene after every step")
}
