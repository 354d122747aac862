// Package sync merges the external notary directory into the store.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// NotaryRecord is the directory payload shape, shared by the seed data
// and the sync source.
type NotaryRecord struct {
	ID             string  `json:"id"`
	FIO            string  `json:"fio"`
	Region         string  `json:"region"`
	Address        string  `json:"address"`
	Specialization string  `json:"specialization"`
	Schedule       string  `json:"schedule"`
	Phone          string  `json:"phone"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// Source fetches the current remote directory state.
type Source interface {
	FetchNotaries(ctx context.Context) ([]NotaryRecord, error)
}

// FileSource reads the directory payload from a local JSON file,
// standing in for the real directory API.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// FetchNotaries loads and decodes the payload.
func (s *FileSource) FetchNotaries(ctx context.Context) ([]NotaryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync payload: %w", err)
	}

	var records []NotaryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sync payload: %w", err)
	}
	return records, nil
}
