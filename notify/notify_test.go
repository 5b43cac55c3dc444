package notify_test

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/immoflow/accessgate/notify"
)

type countingNotifier struct {
	lock sync.Mutex
	got  []notify.Notification
}

func (c *countingNotifier) Notify(n notify.Notification) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.got = append(c.got, n)
}

func (c *countingNotifier) count() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.got)
}

func denial(key string) notify.Notification {
	return notify.Notification{Level: notify.LevelError, Key: key, Message: "access denied"}
}

func TestDeduperSuppressesRepeatedKey(t *testing.T) {
	sink := &countingNotifier{}
	d := notify.NewDeduper(sink, time.Minute)

	d.Notify(denial("gate:role_mismatch:user-1"))
	d.Notify(denial("gate:role_mismatch:user-1"))
	d.Notify(denial("gate:role_mismatch:user-1"))

	require.Equal(t, 1, sink.count())
}

func TestDeduperDistinctKeysPass(t *testing.T) {
	sink := &countingNotifier{}
	d := notify.NewDeduper(sink, time.Minute)

	d.Notify(denial("gate:role_mismatch:user-1"))
	d.Notify(denial("gate:timeout:user-1"))
	d.Notify(denial("gate:role_mismatch:user-2"))

	require.Equal(t, 3, sink.count())
}

func TestDeduperEmptyKeyNeverDeduplicated(t *testing.T) {
	sink := &countingNotifier{}
	d := notify.NewDeduper(sink, time.Minute)

	d.Notify(denial(""))
	d.Notify(denial(""))

	require.Equal(t, 2, sink.count())
}

func TestDeduperWindowExpires(t *testing.T) {
	now := time.Now()
	sink := &countingNotifier{}
	d := notify.NewDeduper(sink, time.Minute).WithNowTime(func() time.Time { return now })

	d.Notify(denial("gate:timeout:user-1"))
	now = now.Add(30 * time.Second)
	d.Notify(denial("gate:timeout:user-1"))
	require.Equal(t, 1, sink.count())

	now = now.Add(time.Minute)
	d.Notify(denial("gate:timeout:user-1"))
	require.Equal(t, 2, sink.count())
}

func TestDeduperResetForgetsHistory(t *testing.T) {
	sink := &countingNotifier{}
	d := notify.NewDeduper(sink, time.Minute)

	d.Notify(denial("gate:role_mismatch:user-1"))
	d.Reset()
	d.Notify(denial("gate:role_mismatch:user-1"))

	require.Equal(t, 2, sink.count())
}

func TestHubFansOutToSubscribers(t *testing.T) {
	hub := notify.NewHub(zerolog.Nop())

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelSecond()

	hub.Notify(denial("gate:timeout:user-1"))

	require.Equal(t, "gate:timeout:user-1", (<-first).Key)
	require.Equal(t, "gate:timeout:user-1", (<-second).Key)

	cancelFirst()
	_, open := <-first
	require.False(t, open, "cancel must close the subscription channel")

	// The remaining subscriber still receives.
	hub.Notify(denial("gate:domain_mismatch:user-1"))
	require.Equal(t, "gate:domain_mismatch:user-1", (<-second).Key)
}

func TestHubDropsWhenSubscriberIsFull(t *testing.T) {
	hub := notify.NewHub(zerolog.Nop())
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overfill the buffered channel; extra notifications are dropped, not
	// blocked on.
	for i := 0; i < 32; i++ {
		hub.Notify(denial(""))
	}

	require.Len(t, ch, 16)
}
