package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "circuit.cir")
	other := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes:
		t.Fatalf("unrelated file reported: %s", got)
	case <-time.After(200 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte("v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes:
		if got != w.Path {
			t.Errorf("change path = %s, want %s", got, w.Path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcherDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circuit.toml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	for i := range 5 {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-w.Changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-w.Changes:
		t.Error("burst of writes reported more than once")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherShortDebounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "circuit.cir")
	if err := os.WriteFile(path, []byte("v1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"default", 0, DefaultDebounce},
		{"negative", -time.Second, DefaultDebounce},
		{"one nanosecond", time.Nanosecond, MinDebounce},
		{"kept", 50 * time.Millisecond, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWatcher(path, tt.in)
			if err != nil {
				t.Fatalf("NewWatcher: %v", err)
			}
			if w.debounce != tt.want {
				t.Errorf("debounce = %v, want %v", w.debounce, tt.want)
			}
			w.watcher.Close()
		})
	}

	w, err := NewWatcher(path, time.Nanosecond)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(path, []byte("v2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Changes:
		if got != w.Path {
			t.Errorf("change = %q, want %q", got, w.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}
