//go:build !linux

package convert

import (
	"os"
	"time"
)

// creationTime falls back to the modification time on platforms without a
// portable creation-time stat field.
func creationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
