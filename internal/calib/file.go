package calib

import (
	"encoding/json"
	"fmt"
	"os"
)

// File is the on-disk calibration record written by cmd/calibration and
// loaded by the scanner at startup.
type File struct {
	SchemaVersion int       `json:"schema_version"`
	CalibratedAt  string    `json:"calibrated_at"` // RFC3339
	Transform     Transform `json:"transform"`
	Stats         FitStats  `json:"stats"`
	Points        []Point   `json:"points,omitempty"`
	Notes         []string  `json:"notes,omitempty"`
}

// SchemaVersion of the calibration file format.
const SchemaVersion = 1

// Save writes the record as indented JSON.
func Save(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("calib: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("calib: write %s: %w", path, err)
	}
	return nil
}

// Load reads a calibration record back.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("calib: read %s: %w", path, err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("calib: parse %s: %w", path, err)
	}
	if f.Transform.A == 0 {
		return File{}, fmt.Errorf("calib: %s has zero slope", path)
	}
	return f, nil
}
