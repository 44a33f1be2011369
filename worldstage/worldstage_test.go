package worldstage

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestCanOperateOnZeroValue(t *testing.T) {
	manager := NewManager()
	gotStage := manager.Current()
	assert.Equal(t, Init, gotStage)

	gotStage = manager.Swap(ShutDown)
	assert.Equal(t, Init, gotStage)
}

func TestCanCompareAndSwapOnZeroValue(t *testing.T) {
	manager := NewManager()
	ok := manager.CompareAndSwap(ShutDown, ShutDown)
	assert.Check(t, !ok, "zero value should be Init")

	ok = manager.CompareAndSwap(Init, ShutDown)
	assert.Check(t, ok, "compare and swap should succeed with correct old value")

	assert.Equal(t, ShutDown, manager.Current())
}

func TestOnlyOneCompareAndSwapSuccess(t *testing.T) {
	successCh := make(chan bool)
	manager := NewManager()

	for i := 0; i < 10; i++ {
		go func() {
			ok := manager.CompareAndSwap(Init, ShutDown)
			successCh <- ok
		}()
	}

	successCount := 0
	failureCount := 0
	for i := 0; i < 10; i++ {
		if <-successCh {
			successCount++
		} else {
			failureCount++
		}
	}
	assert.Equal(t, 1, successCount)
	assert.Equal(t, 9, failureCount)
}
