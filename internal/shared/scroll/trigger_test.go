package scroll

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func nearBottom() Metrics {
	return Metrics{ScrollTop: 1850, ClientHeight: 100, DocumentScrollHeight: 2000}
}

func nearTop() Metrics {
	return Metrics{ScrollTop: 0, ClientHeight: 100, DocumentScrollHeight: 2000}
}

func TestObserve_CoalescesBurstIntoSingleFire(t *testing.T) {
	var fires atomic.Int32
	trigger := NewTrigger(func() { fires.Add(1) }, WithDebounce(10*time.Millisecond))
	trigger.SetActive(true)
	defer trigger.Close()

	for i := 0; i < 25; i++ {
		trigger.Observe(nearBottom())
	}

	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Staying at the bottom must not re-fire.
	trigger.Observe(nearBottom())
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), fires.Load())
}

func TestObserve_RearmsAfterLeavingBottomRegion(t *testing.T) {
	var fires atomic.Int32
	trigger := NewTrigger(func() { fires.Add(1) }, WithDebounce(5*time.Millisecond))
	trigger.SetActive(true)
	defer trigger.Close()

	trigger.Observe(nearBottom())
	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, 5*time.Millisecond)

	trigger.Observe(nearTop())
	trigger.Observe(nearBottom())
	require.Eventually(t, func() bool { return fires.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestObserve_InactiveTriggerNeverFires(t *testing.T) {
	var fires atomic.Int32
	trigger := NewTrigger(func() { fires.Add(1) }, WithDebounce(5*time.Millisecond))
	defer trigger.Close()

	trigger.Observe(nearBottom())
	time.Sleep(30 * time.Millisecond)
	require.Zero(t, fires.Load())

	trigger.SetActive(true)
	trigger.Observe(nearBottom())
	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestClose_CancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	trigger := NewTrigger(func() { fires.Add(1) }, WithDebounce(50*time.Millisecond))
	trigger.SetActive(true)

	trigger.Observe(nearBottom())
	trigger.Close()

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, fires.Load())
}

func TestSetActive_FalseCancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	trigger := NewTrigger(func() { fires.Add(1) }, WithDebounce(50*time.Millisecond))
	trigger.SetActive(true)
	defer trigger.Close()

	trigger.Observe(nearBottom())
	trigger.SetActive(false)

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, fires.Load())
}

func TestMetrics_UsesLargestScrollHeight(t *testing.T) {
	m := Metrics{ScrollTop: 0, ClientHeight: 100, BodyScrollHeight: 500, DocumentScrollHeight: 900}
	require.InDelta(t, 800, m.DistanceFromBottom(), 0.001)
	require.InDelta(t, 100.0/900.0, m.Percentage(), 0.0001)
}
