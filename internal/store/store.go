// Package store persists the categorizer's learned state: the merchant
// mapping, the merchant embeddings and the correction history. The three
// files describe one merchant set, so saves go through temp files renamed in
// a fixed order and loads tolerate missing or corrupt files by resetting the
// affected part.
package store

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"finpipe/bank-csv/internal/logging"
	"finpipe/bank-csv/internal/models"
)

// State is the categorizer's persisted triad.
type State struct {
	Merchants   map[string]string
	Embeddings  map[string][]float32
	Corrections []models.CorrectionRecord
}

// NewState returns an empty, non-nil state.
func NewState() State {
	return State{
		Merchants:  make(map[string]string),
		Embeddings: make(map[string][]float32),
	}
}

// Store reads and writes the state triad under one data directory.
type Store struct {
	merchantsFile   string
	embeddingsFile  string
	correctionsFile string
	log             logging.Logger
}

// New creates a store rooted at dataDir, creating the directory if needed.
func New(dataDir string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if err := os.MkdirAll(dataDir, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating data directory: %w", err)
	}
	return &Store{
		merchantsFile:   filepath.Join(dataDir, "known_merchants.json"),
		embeddingsFile:  filepath.Join(dataDir, "merchant_embeddings.gob"),
		correctionsFile: filepath.Join(dataDir, "user_corrections.json"),
		log:             logger,
	}, nil
}

// Load reads the state triad from disk. Missing files are normal on first
// run; corrupt files reset their part of the state with a warning so a bad
// file never blocks categorization.
func (s *Store) Load() State {
	state := NewState()

	if err := s.loadJSON(s.merchantsFile, &state.Merchants); err != nil {
		s.log.WithError(err).WithField(logging.FieldFile, s.merchantsFile).
			Warn("Could not load known merchants, starting empty")
		state.Merchants = make(map[string]string)
	}
	if err := s.loadGob(s.embeddingsFile, &state.Embeddings); err != nil {
		s.log.WithError(err).WithField(logging.FieldFile, s.embeddingsFile).
			Warn("Could not load merchant embeddings, starting empty")
		state.Embeddings = make(map[string][]float32)
	}
	if err := s.loadJSON(s.correctionsFile, &state.Corrections); err != nil {
		s.log.WithError(err).WithField(logging.FieldFile, s.correctionsFile).
			Warn("Could not load correction history, starting empty")
		state.Corrections = nil
	}

	s.log.WithFields(
		logging.Field{Key: "merchants", Value: len(state.Merchants)},
		logging.Field{Key: "embeddings", Value: len(state.Embeddings)},
		logging.Field{Key: "corrections", Value: len(state.Corrections)},
	).Debug("Loaded categorizer state")

	return state
}

// Save writes the full triad. Each file is written to a temp sibling and
// renamed into place, merchants first, so readers never observe a partially
// written file. A crash between renames can still leave the files on
// different merchant sets; Load tolerates that.
func (s *Store) Save(state State) error {
	if err := s.saveJSON(s.merchantsFile, state.Merchants); err != nil {
		return fmt.Errorf("error saving known merchants: %w", err)
	}
	if err := s.saveGob(s.embeddingsFile, state.Embeddings); err != nil {
		return fmt.Errorf("error saving merchant embeddings: %w", err)
	}
	if err := s.saveJSON(s.correctionsFile, state.Corrections); err != nil {
		return fmt.Errorf("error saving correction history: %w", err)
	}
	return nil
}

func (s *Store) loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) loadGob(path string, v any) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.log.WithError(err).Warn("Failed to close file")
		}
	}()
	return gob.NewDecoder(file).Decode(v)
}

func (s *Store) saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return s.writeAtomic(path, data)
}

func (s *Store) saveGob(path string, v any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), models.PermissionStateFile); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), models.PermissionStateFile); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
