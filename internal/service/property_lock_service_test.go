package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestLocalPropertyLockSerializesPerProperty(t *testing.T) {
	lock := NewLocalPropertyLock()
	propertyID := uuid.New()

	var (
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := lock.Acquire(context.Background(), propertyID)
			if err != nil {
				t.Error(err)
				return
			}
			defer release()
			counter++
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("Expected 50 serialized increments, got %d", counter)
	}
}

func TestLocalPropertyLockIndependentProperties(t *testing.T) {
	lock := NewLocalPropertyLock()

	releaseA, err := lock.Acquire(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	defer releaseA()

	// Holding one property's lock does not block another's
	releaseB, err := lock.Acquire(context.Background(), uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	releaseB()
}
