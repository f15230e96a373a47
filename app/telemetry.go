package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// FrameStats is one telemetry window aggregated over WindowFrames
// ticks.
type FrameStats struct {
	Frame          int64   `csv:"frame"`
	TotalTime      float32 `csv:"total_time"`
	AvgDelta       float32 `csv:"avg_delta"`
	MaxDelta       float32 `csv:"max_delta"`
	SlotWaits      int64   `csv:"slot_waits"`
	DirtyObjects   int     `csv:"dirty_objects"`
	DirtyMaterials int     `csv:"dirty_materials"`
}

// TelemetryWriter appends frame stats windows to frames.csv. A nil
// writer is valid and drops everything, so callers never branch on
// telemetry being enabled.
type TelemetryWriter struct {
	file          *os.File
	headerWritten bool
}

func NewTelemetryWriter(dir string) (*TelemetryWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "frames.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating frames.csv: %w", err)
	}
	return &TelemetryWriter{file: f}, nil
}

func (w *TelemetryWriter) Write(stats FrameStats) error {
	if w == nil {
		return nil
	}
	records := []FrameStats{stats}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

func (w *TelemetryWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	return w.file.Close()
}
