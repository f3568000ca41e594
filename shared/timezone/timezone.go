// Package timezone pins wall-clock time to the hotel's configured IANA zone (APP_TIMEZONE).
// Calendar decisions such as "is this check-in in the past" are made in that zone.
package timezone

import (
	"fmt"
	"sync"
	"time"

	"hotel/config"
	"hotel/shared/constant"

	"github.com/rs/zerolog/log"
)

var (
	mu       sync.RWMutex
	location *time.Location
)

// Location returns the hotel zone, resolving it from configuration on first use.
// Unknown or empty zone names fall back to UTC.
func Location() *time.Location {
	mu.RLock()
	loc := location
	mu.RUnlock()

	if loc != nil {
		return loc
	}

	mu.Lock()
	defer mu.Unlock()

	if location == nil {
		location = fromConfig()
	}

	return location
}

// fromConfig must not touch mu; Location calls it with the write lock held.
func fromConfig() *time.Location {
	name := config.Get().App.Timezone
	if name == constant.Empty {
		return time.UTC
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("falling back to UTC")

		return time.UTC
	}

	return loc
}

// Load replaces the hotel zone with the named IANA location.
func Load(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", name, err)
	}

	SetLocation(loc)

	log.Info().Str("timezone", loc.String()).Msg("Application timezone set")

	return nil
}

// SetLocation pins the zone; a nil location is resolved from configuration again on next use.
func SetLocation(loc *time.Location) {
	mu.Lock()
	defer mu.Unlock()

	location = loc
}

func Now() time.Time {
	return time.Now().In(Location())
}

func In(t time.Time) time.Time {
	return t.In(Location())
}

func Format(t time.Time, layout string) string {
	return In(t).Format(layout)
}
