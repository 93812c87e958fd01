// Package convert turns two-column .dat instrument output into EPIC LR log
// lines appended to a date-partitioned output file.
package convert

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/datwatch/internal/parser"
)

const (
	// timeLayout renders DD/MM/YYYY HH:MM:SS.ffffff.
	timeLayout = "02/01/2006 15:04:05.000000"
	outputName = "LR.txt"
	header     = "EPIC LR Log File\n\nDate,LR\n"
)

// Converter appends converted .dat content to LR.txt under a date-partitioned
// directory tree rooted at outputBase.
type Converter struct {
	outputBase string
	logger     *slog.Logger
}

// New creates a Converter writing under outputBase.
func New(outputBase string, logger *slog.Logger) *Converter {
	return &Converter{outputBase: outputBase, logger: logger}
}

// Convert reads the .dat file at path, offsets each sample from the file's
// creation time, and appends the formatted lines to
// <outputBase>/<YYYY>/<YYYY_MM_DD>/LR.txt. The dated path reflects the time
// of conversion, not the source timestamps. A two-line header is written if
// the output file does not exist yet.
//
// Malformed source lines are logged and skipped; they never abort the file.
// Read or write failures are returned to the caller.
func (c *Converter) Convert(path string) error {
	origin, err := creationTime(path)
	if err != nil {
		return fmt.Errorf("convert: stat %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("convert: read %s: %w", path, err)
	}

	res := parser.Parse(data)
	for _, line := range res.Skipped {
		c.logger.Warn("convert: skipping invalid line",
			slog.String("line", line),
			slog.String("path", path))
	}

	var b strings.Builder
	for _, s := range res.Samples {
		b.WriteString(formatLine(origin, s))
	}

	now := time.Now()
	outDir := filepath.Join(c.outputBase, now.Format("2006"), now.Format("2006_01_02"))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("convert: mkdir %s: %w", outDir, err)
	}
	outPath := filepath.Join(outDir, outputName)

	_, statErr := os.Stat(outPath)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("convert: open %s: %w", outPath, err)
	}
	defer f.Close()

	if needHeader {
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("convert: write header %s: %w", outPath, err)
		}
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("convert: append %s: %w", outPath, err)
	}

	c.logger.Info("convert: appended",
		slog.Int("lines", len(res.Samples)),
		slog.String("output", outPath),
		slog.String("source", path))
	return nil
}

// formatLine renders one sample as "<origin+offset>,<intensity>\n".
func formatLine(origin time.Time, s parser.Sample) string {
	ts := origin.Add(time.Duration(s.Offset * float64(time.Second)))
	return ts.Format(timeLayout) + "," + s.Intensity + "\n"
}
