package tools

import (
	"context"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevantEvent(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write to table", fsnotify.Event{Name: "/docs/search/all_3.js", Op: fsnotify.Write}, true},
		{"new table", fsnotify.Event{Name: "/docs/search/all_12.js", Op: fsnotify.Create}, true},
		{"removed table", fsnotify.Event{Name: "/docs/search/all_0.js", Op: fsnotify.Remove}, true},
		{"other category", fsnotify.Event{Name: "/docs/search/classes_0.js", Op: fsnotify.Write}, false},
		{"search page", fsnotify.Event{Name: "/docs/search/search.js", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/docs/search/all_0.js", Op: fsnotify.Chmod}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevantEvent(tt.event, "all_*.js"); got != tt.want {
				t.Errorf("relevantEvent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatcherReloadsOnChange(t *testing.T) {
	oldDebounce := watchDebounce
	watchDebounce = 50 * time.Millisecond
	defer func() { watchDebounce = oldDebounce }()

	sourceDir := t.TempDir()
	writeTable(t, sourceDir, "all_0.js", sampleTable)
	setupDocSearch(t, sourceDir)

	if err := InitializeDocSearch(); err != nil {
		t.Fatalf("InitializeDocSearch() error = %v", err)
	}
	if err := StartWatcher(context.Background()); err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}
	defer StopWatcher()

	writeTable(t, sourceDir, "all_1.js", extraTable)

	deadline := time.Now().Add(5 * time.Second)
	for {
		if cat := indexMgr.current.Load(); cat != nil && cat.table.Len() == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Watcher did not reload the new table")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestStartWatcherWithoutSourceDir(t *testing.T) {
	setupDocSearch(t, "")

	if err := StartWatcher(context.Background()); err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}
	if watchCancel != nil {
		t.Error("No watcher expected without a source dir")
	}
	StopWatcher()
}
