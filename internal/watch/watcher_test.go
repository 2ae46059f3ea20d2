package watch

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func appendTo(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func TestWatchDeliversDebouncedEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	appendTo(t, path, "one\n")

	w := New(testLogger())
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Several writes in quick succession coalesce into one notification.
	appendTo(t, path, "two\n")
	appendTo(t, path, "three\n")
	appendTo(t, path, "four\n")

	select {
	case ev := <-w.Events():
		if ev.Err != nil {
			t.Fatalf("unexpected watcher error: %v", ev.Err)
		}
		if ev.Path != path {
			t.Errorf("event for wrong path: %q", ev.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event within deadline")
	}

	// The quiet period after the burst should not produce a second event.
	select {
	case ev := <-w.Events():
		t.Fatalf("burst was not coalesced, got extra event %+v", ev)
	case <-time.After(3 * DebounceInterval):
	}
}

func TestWatchReplacesPreviousWatch(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.jsonl")
	second := filepath.Join(dir, "b.jsonl")
	appendTo(t, first, "x\n")
	appendTo(t, second, "x\n")

	w := New(testLogger())
	if err := w.Watch(first); err != nil {
		t.Fatal(err)
	}
	w.SetPosition(42)
	if err := w.Watch(second); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if w.Path() != second {
		t.Errorf("watch not replaced: %q", w.Path())
	}
	if w.Position() != 0 {
		t.Errorf("watermark must reset on re-arm, got %d", w.Position())
	}

	appendTo(t, second, "more\n")
	select {
	case ev := <-w.Events():
		if ev.Path != second {
			t.Errorf("event for wrong path: %q", ev.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event for replacement watch")
	}
}

func TestUnarmedWatcherBlocksForever(t *testing.T) {
	w := New(testLogger())
	if w.Events() != nil {
		t.Error("unarmed watcher must expose a nil channel")
	}
	if w.Active() {
		t.Error("unarmed watcher reports active")
	}

	// A nil channel composes inside a select without ever firing.
	select {
	case <-w.Events():
		t.Fatal("nil event source fired")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStopResetsBookkeeping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.jsonl")
	appendTo(t, path, "x\n")

	w := New(testLogger())
	if err := w.Watch(path); err != nil {
		t.Fatal(err)
	}
	w.SetPosition(99)
	w.Stop()

	if w.Active() || w.Path() != "" || w.Position() != 0 {
		t.Errorf("stop must reset state: active=%v path=%q pos=%d", w.Active(), w.Path(), w.Position())
	}
	// Stop is idempotent.
	w.Stop()
}

func TestWatchMissingFile(t *testing.T) {
	w := New(testLogger())
	if err := w.Watch(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		w.Stop()
		t.Error("expected an error arming a watch on a missing file")
	}
}
