// Package store persists measurement records: one JSON file per run under a
// results directory, a compressed checkpoint of everything collected so far,
// and the environment description of the run.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/codecrdt/modeval/internal/models"
	"github.com/codecrdt/modeval/internal/validation"
	"github.com/klauspost/compress/zstd"
)

// File names inside a run directory.
const (
	ResultsDir      = "results"
	CheckpointFile  = "checkpoint.json.zst"
	EnvironmentFile = "environment_info.json"
	runDirPrefix    = "evaluation_"
	runDirLayout    = "20060102_150405"
)

// ErrDuplicateRecord is returned when a (task, mode, run) key is stored or
// loaded twice.
var ErrDuplicateRecord = errors.New("duplicate record")

// Store writes records for one evaluation run.
type Store struct {
	dir string
	mu  sync.Mutex

	// SaveRawResponses keeps the response content in record files.
	SaveRawResponses bool
}

// New returns a store rooted at an existing run directory.
func New(dir string) *Store {
	return &Store{dir: dir, SaveRawResponses: true}
}

// NewRun creates base/evaluation_<timestamp>/results and returns a store for
// it.
func NewRun(base string, now time.Time) (*Store, error) {
	dir := filepath.Join(base, runDirPrefix+now.Format(runDirLayout))
	if err := os.MkdirAll(filepath.Join(dir, ResultsDir), 0755); err != nil {
		return nil, fmt.Errorf("creating run directory: %w", err)
	}
	return New(dir), nil
}

// Dir is the run directory.
func (s *Store) Dir() string {
	return s.dir
}

// RecordFileName is the file a record is stored under.
func RecordFileName(k models.RecordKey) string {
	return fmt.Sprintf("%s_%s_run%03d.json", models.SanitizeID(k.TaskID), k.Mode, k.RunNumber)
}

// SaveRecord writes one record file. Writing a key that already has a file
// fails with ErrDuplicateRecord.
func (s *Store) SaveRecord(r *models.MeasurementRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, ResultsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}

	out := *r
	if !s.SaveRawResponses {
		out.ResponseContent = ""
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record %s: %w", r.Key(), err)
	}

	path := filepath.Join(dir, RecordFileName(r.Key()))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, r.Key())
		}
		return fmt.Errorf("creating record file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("writing record file: %w", err)
	}
	return f.Close()
}

// WriteCheckpoint replaces the checkpoint with records, zstd-compressed.
func (s *Store) WriteCheckpoint(records models.Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, CheckpointFile)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating checkpoint: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("creating checkpoint encoder: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(records); err != nil {
		enc.Close() //nolint:errcheck
		f.Close()   //nolint:errcheck
		return fmt.Errorf("encoding checkpoint: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("flushing checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing checkpoint: %w", err)
	}
	return os.Rename(tmp, path)
}

// ReadCheckpoint loads the records from a run directory's checkpoint.
func ReadCheckpoint(dir string) (models.Records, error) {
	f, err := os.Open(filepath.Join(dir, CheckpointFile))
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer f.Close() //nolint:errcheck

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating checkpoint decoder: %w", err)
	}
	defer dec.Close()

	var records models.Records
	if err := json.NewDecoder(dec).Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding checkpoint: %w", err)
	}
	return records, nil
}

// EnvironmentInfo describes where and how a run was collected.
type EnvironmentInfo struct {
	Timestamp     time.Time `json:"timestamp"`
	Platform      string    `json:"platform"`
	GoVersion     string    `json:"go_version"`
	Seed          int64     `json:"random_seed"`
	Engine        string    `json:"engine"`
	RunsPerPrompt int       `json:"runs_per_prompt"`
	Prompts       int       `json:"prompts"`
	Configuration any       `json:"configuration,omitempty"`
}

// CurrentEnvironment fills in the platform fields.
func CurrentEnvironment(now time.Time) EnvironmentInfo {
	return EnvironmentInfo{
		Timestamp: now,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		GoVersion: runtime.Version(),
	}
}

// WriteEnvironment writes environment_info.json.
func (s *Store) WriteEnvironment(info EnvironmentInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling environment info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, EnvironmentFile), data, 0644); err != nil {
		return fmt.Errorf("writing environment info: %w", err)
	}
	return nil
}

// LoadDir reads every record file under dir/results (or dir itself when it
// holds the record files directly), validating each against the record
// schema. When there are no record files the checkpoint is used instead.
// Records come back sorted by task, mode and run.
func LoadDir(dir string) (models.Records, error) {
	resultsDir := filepath.Join(dir, ResultsDir)
	if _, err := os.Stat(resultsDir); err != nil {
		resultsDir = dir
	}
	files, err := filepath.Glob(filepath.Join(resultsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing record files: %w", err)
	}
	sort.Strings(files)

	var records models.Records
	if len(files) == 0 {
		records, err = ReadCheckpoint(dir)
		if err != nil {
			return nil, fmt.Errorf("no record files in %s: %w", resultsDir, err)
		}
	}

	for _, path := range files {
		if filepath.Base(path) == EnvironmentFile {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if errs := validation.ValidateRecordBytes(data); len(errs) > 0 {
			return nil, fmt.Errorf("%s does not match the record schema: %v", filepath.Base(path), errs)
		}
		var r models.MeasurementRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		records = append(records, r)
	}

	if err := checkUnique(records); err != nil {
		return nil, err
	}
	return records.Sorted(), nil
}

func checkUnique(records models.Records) error {
	seen := make(map[models.RecordKey]bool, len(records))
	for i := range records {
		k := records[i].Key()
		if seen[k] {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, k)
		}
		seen[k] = true
	}
	return nil
}
