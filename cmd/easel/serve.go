package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/easel/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the engine in server mode, exposing the pointer API, diagram
snapshots and the interaction event stream over HTTP. Prometheus metrics
are mounted at /metrics.

Flags not set on the command line fall back to .env / environment values:
EASEL_ADDR, EASEL_REDIS_ADDR, EASEL_STORE_DIR.`,
	Run: func(cmd *cobra.Command, args []string) {
		// A missing .env file is fine; explicit flags always win.
		_ = godotenv.Load()

		addr := stringFlagOrEnv(cmd, "addr", "EASEL_ADDR")
		redisAddr := stringFlagOrEnv(cmd, "redis", "EASEL_REDIS_ADDR")
		storeDir := stringFlagOrEnv(cmd, "store-dir", "EASEL_STORE_DIR")
		watch, _ := cmd.Flags().GetBool("watch")
		debug, _ := cmd.Flags().GetBool("debug")

		cfg := engineConfig(cmd)
		cfg.RedisAddr = redisAddr
		cfg.StoreDir = storeDir

		opts := cli.ServeOptions{
			EngineConfig: cfg,
			Addr:         addr,
			Watch:        watch,
			Debug:        debug,
		}
		if err := cli.Serve(opts); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for the session store (enables the distributed edit lock)")
	serveCmd.Flags().String("store-dir", "", "Directory for the file session store (ignored when --redis is set)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the diagram when the document changes")
}

// stringFlagOrEnv reads a flag, falling back to the environment when the
// user did not set it.
func stringFlagOrEnv(cmd *cobra.Command, flag, env string) string {
	value, _ := cmd.Flags().GetString(flag)
	if !cmd.Flags().Changed(flag) {
		if v := os.Getenv(env); v != "" {
			value = v
		}
	}
	return value
}
