package services

import (
	"testing"
	"time"
)

func TestContextListenerDeliversLatest(t *testing.T) {
	l := NewContextListener("1")
	ch := l.Subscribe()

	if got := l.Current(); got != "1" {
		t.Fatalf("Current: got %q, want 1", got)
	}

	// nobody is reading; only the newest board is kept
	l.Set("2")
	l.Set("3")

	select {
	case got := <-ch:
		if got != "3" {
			t.Errorf("delivered %q, want 3", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}

	select {
	case got := <-ch:
		t.Errorf("unexpected second delivery %q", got)
	default:
	}
	if got := l.Current(); got != "3" {
		t.Errorf("Current: got %q, want 3", got)
	}
}

func TestContextListenerFansOut(t *testing.T) {
	l := NewContextListener("")
	a, b := l.Subscribe(), l.Subscribe()
	l.Set("7")
	if <-a != "7" || <-b != "7" {
		t.Error("every subscriber should see the change")
	}
}
