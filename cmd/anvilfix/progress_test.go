package main

import (
	"testing"
	"time"
)

func TestBatchProgress_WaitAfterInterruptedBatch(t *testing.T) {
	bar := newBatchProgress(3, false)
	bar.Increment()

	done := make(chan struct{})
	go func() {
		bar.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return for a bar short of its total")
	}
}

func TestBatchProgress_WaitAfterFullBatch(t *testing.T) {
	bar := newBatchProgress(2, false)
	bar.Increment()
	bar.Increment()

	done := make(chan struct{})
	go func() {
		bar.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return for a completed bar")
	}
}
