package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/loam"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/adapters/file"
	loamAdapter "github.com/aretw0/easel/pkg/adapters/loam"
	redisAdapter "github.com/aretw0/easel/pkg/adapters/redis"
	"github.com/aretw0/easel/pkg/catalog"
)

// EngineConfig carries the engine flags shared by the easel commands.
type EngineConfig struct {
	DiagramPath string
	PalettePath string
	RedisAddr   string
	StoreDir    string
}

// NewEngine initializes an Easel engine with standard CLI conventions.
func NewEngine(cfg EngineConfig, logger *slog.Logger, extra ...easel.Option) (*easel.Engine, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts := []easel.Option{easel.WithLogger(logger)}

	if palettePath := ResolvePalettePath(cfg); palettePath != "" {
		cat, err := LoadPalette(context.Background(), palettePath)
		if err != nil {
			return nil, fmt.Errorf("error loading palette: %w", err)
		}
		opts = append(opts, easel.WithCatalog(cat))
		logger.Info("palette loaded", "path", palettePath, "entries", cat.Len())
	}

	switch {
	case cfg.RedisAddr != "":
		client := backend.NewClient(&backend.Options{Addr: cfg.RedisAddr})
		opts = append(opts,
			easel.WithSessionStore(redisAdapter.NewFromClient(client)),
			easel.WithLocker(redisAdapter.NewLocker(client, "easel:")),
		)
		logger.Info("redis session store enabled", "addr", cfg.RedisAddr)

	case cfg.StoreDir != "":
		opts = append(opts, easel.WithSessionStore(file.NewStore(cfg.StoreDir)))
		logger.Info("file session store enabled", "dir", cfg.StoreDir)
	}

	opts = append(opts, extra...)

	engine, err := easel.New(cfg.DiagramPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// ResolvePalettePath applies the palette convention shared by the commands:
// an explicit path wins. Otherwise a palette directory next to the diagram is
// picked up without a flag; this avoids magic when the project has no palette.
func ResolvePalettePath(cfg EngineConfig) string {
	if cfg.PalettePath != "" {
		return cfg.PalettePath
	}
	candidate := filepath.Join(filepath.Dir(cfg.DiagramPath), "palette")
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return candidate
	}
	return ""
}

// LoadPalette reads catalog entries from a Loam palette directory.
func LoadPalette(ctx context.Context, path string) (*catalog.Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid palette path: %w", err)
	}
	repo, err := loam.Init(absPath, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to init palette repository: %w", err)
	}
	src := loamAdapter.New(loam.NewTypedRepository[loamAdapter.EntryMetadata](repo))
	return catalog.FromSource(ctx, src)
}
