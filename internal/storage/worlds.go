package storage

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rybla/sva-engine/pkg/adventure"
)

// WorldLibrary loads authored world seeds from YAML files under
// <dataDir>/worlds.
type WorldLibrary struct {
	dataDir string
	logger  *slog.Logger
}

func NewWorldLibrary(dataDir string, logger *slog.Logger) *WorldLibrary {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &WorldLibrary{dataDir: dataDir, logger: logger}
}

// List returns a map of world name to seed filename.
func (l *WorldLibrary) List() (map[string]string, error) {
	worldsDir := filepath.Join(l.dataDir, "worlds")
	worlds := make(map[string]string)

	err := filepath.WalkDir(worldsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Failed to read world seed file", "path", path, "error", err)
			return nil
		}
		seed, err := adventure.ParseSeed(data)
		if err != nil {
			l.logger.Warn("Failed to parse world seed file", "path", path, "error", err)
			return nil
		}

		worlds[seed.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	return worlds, nil
}

// Get loads, parses and builds the seed in the named file.
func (l *WorldLibrary) Get(filename string) (*adventure.World, error) {
	// Reject any path that climbs out of the worlds directory.
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid world filename: %s", filename)
	}

	path := filepath.Join(l.dataDir, "worlds", filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("world not found: %s", filename)
		}
		return nil, fmt.Errorf("failed to read world seed file: %w", err)
	}

	seed, err := adventure.ParseSeed(data)
	if err != nil {
		return nil, err
	}
	return seed.Build()
}
