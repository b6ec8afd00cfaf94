package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// AssetStore persists generated binary assets (images, text files) on the
// filesystem under <dataDir>/assets/<instance-id>/<name>. Assets are side
// effects of turns and carry no state-machine meaning.
type AssetStore struct {
	dataDir string
	logger  *slog.Logger
}

func NewAssetStore(dataDir string, logger *slog.Logger) *AssetStore {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &AssetStore{dataDir: dataDir, logger: logger}
}

func (s *AssetStore) assetPath(instanceID uuid.UUID, name string) (string, error) {
	// Asset names are logical keys, not paths. "." and ".." pass the
	// Base check but resolve to directories.
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid asset name: %q", name)
	}
	return filepath.Join(s.dataDir, "assets", instanceID.String(), name), nil
}

func (s *AssetStore) Save(instanceID uuid.UUID, name string, data []byte) error {
	path, err := s.assetPath(instanceID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Error("Failed to write asset", "instance_id", instanceID, "name", name, "error", err)
		return fmt.Errorf("failed to write asset: %w", err)
	}
	return nil
}

// Load returns the asset bytes, or nil if the asset does not exist.
func (s *AssetStore) Load(instanceID uuid.UUID, name string) ([]byte, error) {
	path, err := s.assetPath(instanceID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}

// List returns the sorted asset names saved for an instance.
func (s *AssetStore) List(instanceID uuid.UUID) ([]string, error) {
	dir := filepath.Join(s.dataDir, "assets", instanceID.String())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteAll removes every asset saved for an instance.
func (s *AssetStore) DeleteAll(instanceID uuid.UUID) error {
	dir := filepath.Join(s.dataDir, "assets", instanceID.String())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete assets: %w", err)
	}
	return nil
}
