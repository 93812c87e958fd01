// Package parser parses two-column offset/intensity .dat instrument output.
package parser

import (
	"strconv"
	"strings"
)

// Sample is one parsed .dat line: a seconds offset from the file's time
// origin and a free-text intensity value.
type Sample struct {
	Offset    float64
	Intensity string
}

// Result holds the output of parsing a .dat file.
type Result struct {
	Samples []Sample
	// Skipped holds the raw text of lines that were not exactly two
	// tab-separated fields or whose offset did not parse as a number.
	Skipped []string
}

// Parse splits data into lines and extracts offset/intensity samples.
// Blank lines are ignored. Malformed lines are collected in Skipped and
// never abort the rest of the file.
func Parse(data []byte) *Result {
	res := &Result{}

	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) != 2 {
			res.Skipped = append(res.Skipped, line)
			continue
		}

		offset, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			res.Skipped = append(res.Skipped, line)
			continue
		}

		res.Samples = append(res.Samples, Sample{
			Offset:    offset,
			Intensity: parts[1],
		})
	}

	return res
}
