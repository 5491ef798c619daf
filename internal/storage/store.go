package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/galaxysim/internal/config"
	"github.com/san-kum/galaxysim/internal/sim"
	"github.com/san-kum/galaxysim/internal/star"
	"github.com/san-kum/galaxysim/internal/vec"
)

const (
	metadataFile = "metadata.json"
	starsFile    = "stars.csv"
)

var ErrMalformed = errors.New("storage: malformed star snapshot")

var starsHeader = []string{
	"x", "y", "z",
	"prev_x", "prev_y", "prev_z",
	"vx", "vy", "vz",
	"mass", "density",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Parent      string             `json:"parent,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Config      config.Config      `json:"config"`
	Steps       int                `json:"steps"`
	Time        float64            `json:"time"`
	Live        int                `json:"live"`
	Died        int                `json:"died"`
	Extinct     bool               `json:"extinct"`
	Metrics     map[string]float64 `json:"metrics"`
	LiveHistory []float64          `json:"live_history"`
}

// Save writes the run's metadata and a snapshot of its live stars into a
// new run directory and returns the run id. parent names the run this one
// continues, if any.
func (s *Store) Save(cfg *config.Config, result *sim.Result, live []star.Star, parent string) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("galaxy_%d", now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Parent:      parent,
		Timestamp:   now,
		Config:      *cfg,
		Steps:       result.Steps,
		Time:        result.Time,
		Live:        result.Live,
		Died:        result.Died,
		Extinct:     result.Extinct,
		Metrics:     result.Metrics,
		LiveHistory: result.LiveHistory,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeStars(filepath.Join(runDir, starsFile), live); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStars(path string, stars []star.Star) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(starsHeader); err != nil {
		return err
	}

	row := make([]string, len(starsHeader))
	for i := range stars {
		st := &stars[i]
		vals := [...]float64{
			st.Pos.X, st.Pos.Y, st.Pos.Z,
			st.Prev.X, st.Prev.Y, st.Prev.Z,
			st.Vel.X, st.Vel.Y, st.Vel.Z,
			st.Mass, st.Density,
		}
		for j, v := range vals {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first. Directories without
// valid metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaPath, err)
	}

	return &meta, nil
}

// LoadStars reads a run's star snapshot. Every star comes back alive with
// its density colour.
func (s *Store) LoadStars(runID string) ([]star.Star, error) {
	csvPath := filepath.Join(s.baseDir, runID, starsFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(starsHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}

	stars := make([]star.Star, 0, len(records)-1)
	var vals [11]float64
	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d column %s: %v", ErrMalformed, i+1, starsHeader[j], err)
			}
			vals[j] = v
		}

		st := star.New(vec.New(vals[0], vals[1], vals[2]), vec.New(vals[6], vals[7], vals[8]), vals[9])
		st.Prev = vec.New(vals[3], vals[4], vals[5])
		st.Density = vals[10]
		st.UpdateColor()
		stars = append(stars, st)
	}

	return stars, nil
}
