// Package fixture serves boards from a local YAML or JSONC file. It stands in
// for the board API in development and tests.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"listing-map/models"
	"listing-map/utils"
)

type document struct {
	Boards []models.RawBoard `json:"boards" yaml:"boards"`
}

// Source reads the fixture file on every call, so edits show up on the next load.
type Source struct {
	path   string
	logger *utils.Logger
}

// New creates a Source for the file at path. The extension picks the decoder:
// .json/.jsonc go through jsonc, everything else through YAML.
func New(path string, logger *utils.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Parse decodes a fixture document. format is "yaml" or "jsonc".
func Parse(data []byte, format string) ([]models.RawBoard, error) {
	var doc document
	switch format {
	case "jsonc", "json":
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return nil, fmt.Errorf("fixture: parse jsonc: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("fixture: parse yaml: %w", err)
		}
	}
	return doc.Boards, nil
}

func (s *Source) load() ([]models.RawBoard, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %q: %w", s.path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(s.path)), ".")
	return Parse(data, format)
}

func (s *Source) Boards(_ context.Context) ([]models.BoardRef, error) {
	boards, err := s.load()
	if err != nil {
		return nil, err
	}
	refs := make([]models.BoardRef, 0, len(boards))
	for _, b := range boards {
		refs = append(refs, models.BoardRef{ID: b.ID, Name: b.Name})
	}
	return refs, nil
}

func (s *Source) Items(_ context.Context, boardIDs []string) ([]models.RawBoard, error) {
	if len(boardIDs) == 0 {
		return nil, nil
	}
	boards, err := s.load()
	if err != nil {
		return nil, err
	}

	wanted := utils.NewOrderedSet(boardIDs...)
	out := make([]models.RawBoard, 0, len(boardIDs))
	for _, b := range boards {
		if wanted.Contains(b.ID) {
			out = append(out, b)
		}
	}
	s.logger.Debug("[fixture] Serving %d of %d boards from %s", len(out), len(boards), s.path)
	return out, nil
}

// Watch calls onChange after the fixture file is written, debounced so a burst
// of saves triggers one call. It blocks until ctx is cancelled.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fixture: watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so watch the directory.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("fixture: watch %q: %w", dir, err)
	}
	s.logger.Info("[fixture] Watching %s for changes", s.path)

	target := filepath.Clean(s.path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(200 * time.Millisecond)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("[fixture] Watch error: %v", err)

		case <-pending:
			pending = nil
			s.logger.Info("[fixture] %s changed, reloading", s.path)
			onChange()
		}
	}
}
