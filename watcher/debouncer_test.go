package watcher

import (
	"testing"
	"time"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *Debouncer, timeout time.Duration) []Event {
	t.Helper()
	select {
	case batch := <-d.Output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debouncer batch")
		return nil
	}
}

func Test_Debouncer_SingleEvent(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Stop()

	d.Add("photo.jpg", OpCreate)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if len(batch) != 1 {
		t.Fatalf("expected 1 event, got %d", len(batch))
	}
	if batch[0].Path != "photo.jpg" || batch[0].Op != OpCreate {
		t.Errorf("unexpected event %+v", batch[0])
	}
}

func Test_Debouncer_CollapsesSamePath(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Stop()

	d.Add("photo.jpg", OpCreate)
	d.Add("photo.jpg", OpRemove)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if len(batch) != 1 {
		t.Fatalf("expected 1 collapsed event, got %d", len(batch))
	}
	if batch[0].Op != OpRemove {
		t.Errorf("expected latest op remove, got %s", batch[0].Op)
	}
}

func Test_Debouncer_SortedBatch(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Stop()

	d.Add("song.mp3", OpWrite)
	d.Add("clip.mp4", OpCreate)
	d.Add("notes.txt", OpRemove)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	expected := []string{"clip.mp4", "notes.txt", "song.mp3"}
	if len(batch) != len(expected) {
		t.Fatalf("expected %d events, got %d", len(expected), len(batch))
	}
	for i, path := range expected {
		if batch[i].Path != path {
			t.Errorf("event[%d]: expected %s, got %s", i, path, batch[i].Path)
		}
	}
}

func Test_Debouncer_TimerReset(t *testing.T) {
	d := NewDebouncer(testInterval)
	defer d.Stop()

	d.Add("a.txt", OpWrite)
	time.Sleep(testInterval / 2)
	d.Add("b.txt", OpWrite)

	batch := receiveBatch(t, d, 500*time.Millisecond)
	if len(batch) != 2 {
		t.Fatalf("expected 2 events in a single batch, got %d", len(batch))
	}
}

func Test_Debouncer_StopClosesOutput(t *testing.T) {
	d := NewDebouncer(testInterval)
	d.Add("a.txt", OpWrite)
	d.Stop()
	d.Stop()
	d.Add("b.txt", OpWrite)

	select {
	case _, ok := <-d.Output():
		if ok {
			t.Error("expected no batch after stop")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected output channel to be closed")
	}
}

func Test_EventOp_String(t *testing.T) {
	if OpRename.String() != "rename" || EventOp(42).String() != "unknown" {
		t.Error("unexpected EventOp names")
	}
}
