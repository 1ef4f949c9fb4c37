package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/render"
)

const (
	metadataFile  = "metadata.json"
	histogramFile = "histogram.csv"
	imageFile     = "grid.png"
)

// Store keeps one directory per saved render under baseDir.
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
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Config    config.Config `json:"config"`
	Backend   string        `json:"backend"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Pixels    int           `json:"pixels"`
	Escaped   int           `json:"escaped"`
	Bounded   int           `json:"bounded"`
}

// Save writes the metadata, the escape histogram and the image of res.
func (s *Store) Save(cfg *config.Config, res *render.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.ColorPolicy, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	stats := res.Stats()
	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Config:    *cfg,
		Backend:   res.Backend,
		Elapsed:   res.Elapsed,
		Pixels:    stats.Pixels,
		Escaped:   stats.Escaped,
		Bounded:   stats.Bounded,
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, histogramFile), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"iteration", "pixels"}); err != nil {
			return err
		}
		for i, n := range stats.Histogram {
			if err := cw.Write([]string{strconv.Itoa(i), strconv.Itoa(n)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, imageFile), func(w io.Writer) error {
		return png.Encode(w, res.Grid.Image())
	}); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, oldest first. Directories without valid metadata
// are skipped.
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

// LoadHistogram returns the escape counts indexed by iteration.
func (s *Store) LoadHistogram(runID string) ([]int, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, histogramFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []int{}, nil
	}

	hist := make([]int, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 2 {
			return nil, fmt.Errorf("storage: malformed histogram row %v", record)
		}
		n, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("storage: malformed histogram row %v: %w", record, err)
		}
		hist = append(hist, n)
	}
	return hist, nil
}

// ImagePath returns where the run's png lives.
func (s *Store) ImagePath(runID string) string {
	return filepath.Join(s.baseDir, runID, imageFile)
}

// ExportJSON writes the run metadata and histogram to w.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	hist, err := s.LoadHistogram(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*RunMetadata
		Histogram []int `json:"histogram"`
	}{meta, hist})
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
