package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerPool(t *testing.T) {
	assert := assert.New(t)

	t.Run("Get and Put", func(t *testing.T) {
		timer1 := GetTimer(time.Second)
		assert.NotNil(timer1)
		PutTimer(timer1)

		timer2 := GetTimer(10 * time.Millisecond)
		assert.NotNil(timer2)
		<-timer2.C
		PutTimer(timer2)
	})

	t.Run("Reused timer does not fire early", func(t *testing.T) {
		timer1 := GetTimer(time.Millisecond)
		time.Sleep(5 * time.Millisecond) // let it fire without draining
		PutTimer(timer1)

		start := time.Now()
		timer2 := GetTimer(20 * time.Millisecond)
		<-timer2.C
		assert.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
		PutTimer(timer2)
	})
}

func TestSleep(t *testing.T) {
	start := time.Now()
	Sleep(15 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	start = time.Now()
	Sleep(0)
	Sleep(-time.Second)
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, SleepContext(context.Background(), 5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := SleepContext(ctx, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
