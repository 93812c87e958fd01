//go:build linux

package convert

import (
	"os"
	"syscall"
	"time"
)

// creationTime returns the closest thing Linux offers to a file creation
// time: the inode change time. Instrument files are written once and never
// chmod-ed, so this matches the time the file appeared.
func creationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec), nil
	}
	return info.ModTime(), nil
}
