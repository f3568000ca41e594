package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel/shared/timezone"
)

func TestLoad(t *testing.T) {
	t.Cleanup(func() { timezone.SetLocation(time.UTC) })

	require.NoError(t, timezone.Load("Asia/Jakarta"))
	assert.Equal(t, "Asia/Jakarta", timezone.Location().String())

	assert.Error(t, timezone.Load("Mars/Olympus_Mons"))
	assert.Equal(t, "Asia/Jakarta", timezone.Location().String(), "a failed load keeps the previous zone")
}

func TestFormat(t *testing.T) {
	t.Cleanup(func() { timezone.SetLocation(time.UTC) })

	lateEvening := time.Date(2025, time.June, 1, 20, 30, 0, 0, time.UTC)

	timezone.SetLocation(time.UTC)
	assert.Equal(t, "2025-06-01", timezone.Format(lateEvening, time.DateOnly))

	timezone.SetLocation(time.FixedZone("UTC+7", 7*60*60))
	assert.Equal(t, "2025-06-02", timezone.Format(lateEvening, time.DateOnly))
	assert.Equal(t, 3, timezone.In(lateEvening).Hour())
}

func TestNow(t *testing.T) {
	t.Cleanup(func() { timezone.SetLocation(time.UTC) })

	zone := time.FixedZone("UTC-5", -5*60*60)
	timezone.SetLocation(zone)

	now := timezone.Now()

	assert.Equal(t, zone, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}
