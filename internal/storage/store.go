package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/physics"
	"github.com/san-kum/rigid2d/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
	sceneFile    = "scene.yaml"
)

// ErrMalformedRow indicates a frames.csv row that cannot be parsed.
var ErrMalformedRow = errors.New("storage: malformed frame row")

var frameHeader = []string{
	"frame", "time", "contacts", "id", "name", "kind", "static",
	"x", "y", "vx", "vy", "orientation", "angular_velocity",
	"half_width", "half_height", "radius",
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
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Frames     int                `json:"frames"`
	Substeps   int                `json:"substeps"`
	Iterations int                `json:"iterations"`
	GravityX   float64            `json:"gravity_x"`
	GravityY   float64            `json:"gravity_y"`
	Bodies     int                `json:"bodies"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Save writes metadata.json and frames.csv into a new run directory and
// returns the run id.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      cfg.Scene,
		Timestamp:  now,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Frames:     result.StepsTaken,
		Substeps:   cfg.World.Substeps,
		Iterations: cfg.World.Iterations,
		GravityX:   cfg.World.Gravity.X,
		GravityY:   cfg.World.Gravity.Y,
		Bodies:     len(cfg.Bodies),
		Metrics:    result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	if err := WriteFramesFile(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, sceneFile), cfg); err != nil {
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

// WriteFramesFile writes frames as CSV, one row per body per frame.
func WriteFramesFile(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteFrames(f, frames)
}

func WriteFrames(out io.Writer, frames []sim.Frame) error {
	w := csv.NewWriter(out)

	if err := w.Write(frameHeader); err != nil {
		return err
	}

	for _, fr := range frames {
		for _, b := range fr.Bodies {
			if err := w.Write(frameRow(fr, b)); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

func frameRow(fr sim.Frame, b sim.BodyState) []string {
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		strconv.Itoa(fr.Index),
		ff(fr.Time),
		strconv.Itoa(fr.Contacts),
		strconv.FormatUint(b.ID, 10),
		b.Name,
		b.Kind.String(),
		strconv.FormatBool(b.Static),
		ff(b.X), ff(b.Y), ff(b.VX), ff(b.VY),
		ff(b.Orientation), ff(b.AngularVelocity),
		ff(b.HalfWidth), ff(b.HalfHeight), ff(b.Radius),
	}
}

// List returns the metadata of every stored run, oldest first.
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

// LoadConfig reads back the scene a run was started from.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, sceneFile))
}

// LoadFrames reads back the recorded frames of a run.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	return ReadFramesFile(filepath.Join(s.baseDir, runID, framesFile))
}

func ReadFramesFile(path string) ([]sim.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(frameHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i := 1; i < len(records); i++ {
		fr, b, err := parseRow(records[i])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		if n := len(frames); n == 0 || frames[n-1].Index != fr.Index {
			frames = append(frames, fr)
		}
		last := &frames[len(frames)-1]
		last.Bodies = append(last.Bodies, b)
	}

	return frames, nil
}

func parseRow(rec []string) (sim.Frame, sim.BodyState, error) {
	var (
		fr   sim.Frame
		b    sim.BodyState
		errs []error
	)
	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		errs = append(errs, err)
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		errs = append(errs, err)
		return v
	}

	fr.Index = atoi(rec[0])
	fr.Time = atof(rec[1])
	fr.Contacts = atoi(rec[2])

	id, err := strconv.ParseUint(rec[3], 10, 64)
	errs = append(errs, err)
	b.ID = id
	b.Name = rec[4]
	switch rec[5] {
	case physics.KindBox.String():
		b.Kind = physics.KindBox
	case physics.KindCircle.String():
		b.Kind = physics.KindCircle
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", rec[5]))
	}
	static, err := strconv.ParseBool(rec[6])
	errs = append(errs, err)
	b.Static = static

	b.X, b.Y = atof(rec[7]), atof(rec[8])
	b.VX, b.VY = atof(rec[9]), atof(rec[10])
	b.Orientation, b.AngularVelocity = atof(rec[11]), atof(rec[12])
	b.HalfWidth, b.HalfHeight, b.Radius = atof(rec[13]), atof(rec[14]), atof(rec[15])

	if err := errors.Join(errs...); err != nil {
		return fr, b, fmt.Errorf("%w: %w", ErrMalformedRow, err)
	}
	return fr, b, nil
}
