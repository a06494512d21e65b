package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"battlefeed/internal/storage/postgres"
)

// CheckpointStore persists the last replayed block.
type CheckpointStore interface {
	Load(ctx context.Context) (uint64, bool, error)
	Save(ctx context.Context, block uint64) error
}

type checkpointRecord struct {
	LastProcessedBlock uint64 `json:"last_processed_block"`
	UpdatedAt          string `json:"updated_at"`
}

// FileCheckpoint stores the checkpoint in a local JSON file.
type FileCheckpoint struct {
	Path string
}

func (c *FileCheckpoint) Load(_ context.Context) (uint64, bool, error) {
	if c == nil || c.Path == "" {
		return 0, false, nil
	}

	stat, err := os.Stat(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("stat checkpoint: %w", err)
	}
	if stat.IsDir() {
		return 0, false, fmt.Errorf("checkpoint path is a directory")
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint: %w", err)
	}

	var rec checkpointRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, false, fmt.Errorf("parse checkpoint: %w", err)
	}
	return rec.LastProcessedBlock, true, nil
}

func (c *FileCheckpoint) Save(_ context.Context, block uint64) error {
	if c == nil || c.Path == "" {
		return nil
	}

	dir := filepath.Dir(c.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create checkpoint dir: %w", err)
		}
	}

	data, err := json.Marshal(checkpointRecord{
		LastProcessedBlock: block,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmpPath := c.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint tmp: %w", err)
	}
	if err := os.Rename(tmpPath, c.Path); err != nil {
		return fmt.Errorf("rename checkpoint: %w", err)
	}
	return nil
}

// DBCheckpoint stores the checkpoint in the listener_state table.
type DBCheckpoint struct {
	Store *postgres.Store
	Name  string
}

func (c *DBCheckpoint) Load(ctx context.Context) (uint64, bool, error) {
	if c == nil || c.Store == nil {
		return 0, false, nil
	}
	return c.Store.LoadState(ctx, c.Name)
}

func (c *DBCheckpoint) Save(ctx context.Context, block uint64) error {
	if c == nil || c.Store == nil {
		return nil
	}
	return c.Store.SaveState(ctx, c.Name, block)
}
