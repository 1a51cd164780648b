package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/rigid2d/internal/config"
	"github.com/san-kum/rigid2d/internal/sim"
)

type ExportData struct {
	Scene   string             `json:"scene"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	Frames  []sim.Frame        `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
}

func newExportData(cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Scene:   cfg.Scene,
		Dt:      cfg.Dt,
		Steps:   result.StepsTaken,
		Times:   result.Times(),
		Frames:  result.Frames,
		Metrics: result.Metrics,
	}
}

// ExportJSON writes the whole run as indented JSON.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(cfg, result))
}

func ExportJSONFile(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportJSON(file, cfg, result)
}
