package pacer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPacerEnforcesSpacing(t *testing.T) {
	interval := 20 * time.Millisecond
	p := New(interval)
	c := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		err := p.Wait(c)
		assert.NoError(t, err)
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestPacerZeroIntervalNeverWaits(t *testing.T) {
	p := New(0)
	c := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		err := p.Wait(c)
		assert.NoError(t, err)
	}

	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestPacerWaitHonorsCancellation(t *testing.T) {
	p := New(time.Hour)
	c, cancel := context.WithCancel(context.Background())

	err := p.Wait(c)
	assert.NoError(t, err)

	cancel()
	err = p.Wait(c)
	assert.Error(t, err)
}
