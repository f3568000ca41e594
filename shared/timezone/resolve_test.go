package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow_ResolvesWithoutPriorSetup(t *testing.T) {
	SetLocation(nil)
	t.Cleanup(func() { SetLocation(time.UTC) })

	done := make(chan time.Time, 1)

	go func() { done <- Now() }()

	select {
	case now := <-done:
		assert.NotNil(t, now.Location())
		assert.WithinDuration(t, time.Now(), now, time.Second)
	case <-time.After(3 * time.Second):
		t.Fatal("Now blocked while resolving the zone")
	}

	// resolved once, later calls return the cached zone
	assert.Same(t, Location(), Location())
}
