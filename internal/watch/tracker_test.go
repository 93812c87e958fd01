package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/datwatch/internal/markers"
)

func writeDat(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestShouldTrack_NewFile(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	path := writeDat(t, t.TempDir(), "run1.dat", "0.0\t5\n")

	if !tr.ShouldTrack(path) {
		t.Error("file without a marker should be trackable")
	}
}

func TestShouldTrack_MissingFile(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	if tr.ShouldTrack(filepath.Join(t.TempDir(), "gone.dat")) {
		t.Error("vanished file must not be tracked")
	}
}

func TestShouldTrack_Directory(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	dir := filepath.Join(t.TempDir(), "sub.dat")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if tr.ShouldTrack(dir) {
		t.Error("directories must not be tracked")
	}
}

func TestShouldTrack_IdempotentAfterCommit(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	path := writeDat(t, t.TempDir(), "run1.dat", "0.0\t5\n")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.Commit(path, info.ModTime()); err != nil {
		t.Fatal(err)
	}

	// Re-emitted events for the same revision must be filtered out.
	if tr.ShouldTrack(path) {
		t.Error("unchanged file with marker == mtime must not be re-tracked")
	}
}

func TestShouldTrack_NewerRevisionAfterCommit(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	path := writeDat(t, t.TempDir(), "run1.dat", "0.0\t5\n")

	info, _ := os.Stat(path)
	_ = tr.Commit(path, info.ModTime())

	newer := info.ModTime().Add(time.Second)
	if err := os.Chtimes(path, newer, newer); err != nil {
		t.Fatal(err)
	}

	if !tr.ShouldTrack(path) {
		t.Error("strictly newer mtime must be trackable again")
	}
}

func TestDue_QuietFilePromoted(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	tr.Touch("/pdirs/run1.dat")

	if due := tr.Due(50 * time.Millisecond); len(due) != 0 {
		t.Fatalf("fresh file promoted too early: %v", due)
	}

	time.Sleep(80 * time.Millisecond)

	due := tr.Due(50 * time.Millisecond)
	if len(due) != 1 || due[0] != "/pdirs/run1.dat" {
		t.Errorf("due = %v, want the quiet file", due)
	}
}

func TestDue_ContinuedActivitySuppresses(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	tr.Touch("/pdirs/run1.dat")
	time.Sleep(60 * time.Millisecond)

	// A new event resets the debounce window.
	tr.Touch("/pdirs/run1.dat")

	if due := tr.Due(50 * time.Millisecond); len(due) != 0 {
		t.Errorf("touched file must not be due: %v", due)
	}

	time.Sleep(80 * time.Millisecond)
	if due := tr.Due(50 * time.Millisecond); len(due) != 1 {
		t.Errorf("quiet file should be due exactly once: %v", due)
	}
}

func TestDue_OldestFirst(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	tr.Touch("/pdirs/a.dat")
	time.Sleep(20 * time.Millisecond)
	tr.Touch("/pdirs/b.dat")
	time.Sleep(20 * time.Millisecond)

	due := tr.Due(10 * time.Millisecond)
	if len(due) != 2 || due[0] != "/pdirs/a.dat" || due[1] != "/pdirs/b.dat" {
		t.Errorf("due = %v, want oldest activity first", due)
	}
}

func TestDrop_RemovesWithoutMarker(t *testing.T) {
	store := markers.NewMemory()
	tr := NewTracker(store)
	tr.Touch("/pdirs/run1.dat")

	tr.Drop("/pdirs/run1.dat")

	if tr.Tracked() != 0 {
		t.Error("dropped path still tracked")
	}
	if got, _ := store.Get("/pdirs/run1.dat"); !got.IsZero() {
		t.Error("drop must not write a marker")
	}
}

func TestCommit_RecordsMarkerAndClears(t *testing.T) {
	store := markers.NewMemory()
	tr := NewTracker(store)
	tr.Touch("/pdirs/run1.dat")

	mtime := time.Unix(1704103200, 0)
	if err := tr.Commit("/pdirs/run1.dat", mtime); err != nil {
		t.Fatal(err)
	}

	if tr.Tracked() != 0 {
		t.Error("committed path still tracked")
	}
	got, _ := store.Get("/pdirs/run1.dat")
	if !got.Equal(mtime) {
		t.Errorf("marker = %v, want %v", got, mtime)
	}
}

func TestTouch_LastWriteWins(t *testing.T) {
	tr := NewTracker(markers.NewMemory())
	tr.Touch("/pdirs/run1.dat")
	tr.Touch("/pdirs/run1.dat")

	if tr.Tracked() != 1 {
		t.Errorf("tracked = %d, want 1 entry per path", tr.Tracked())
	}
}
