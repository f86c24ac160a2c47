package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cvsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	seriesFile   = "series.csv"
)

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
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Timestamp        time.Time          `json:"timestamp"`
	Dt               float64            `json:"dt"`
	Duration         float64            `json:"duration"`
	Compression      int                `json:"compression"`
	Decimation       string             `json:"decimation"`
	Baroreflex       bool               `json:"arterial_baroreflex"`
	Cardiopulmonary  bool               `json:"cardiopulmonary"`
	Tilt             bool               `json:"tilt"`
	VolumeCorrection bool               `json:"volume_correction"`
	Params           map[string]float64 `json:"params,omitempty"`
	Samples          int                `json:"samples"`
	Beats            int                `json:"beats"`
	Residual         float64            `json:"residual"`
	Metrics          map[string]float64 `json:"metrics"`
}

// Save writes the metadata and every recorded series of result under a new
// run directory and returns the run id.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	if meta.Name == "" {
		meta.Name = "run"
	}
	meta.Timestamp = time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	meta.Samples = result.Samples
	meta.Beats = result.Beats
	meta.Residual = result.Residual
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, seriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeSeries(csvFile, FromSample(result.Series)); err != nil {
		return "", err
	}
	return meta.ID, nil
}

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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSeries reads the recorded series of a run.
func (s *Store) LoadSeries(runID string) (*Table, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	table := &Table{
		Names:   records[0],
		Columns: make([][]float64, len(records[0])),
	}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) != len(table.Names) {
			return nil, fmt.Errorf("%s line %d: %d fields, want %d", seriesFile, i+1, len(record), len(table.Names))
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", seriesFile, i+1, err)
			}
			table.Columns[j] = append(table.Columns[j], v)
		}
	}
	return table, nil
}
