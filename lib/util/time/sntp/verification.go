package sntp

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/samber/oops"
)

// There is no bound on ClockOffset: a device that booted without a
// real-time clock may be years behind, which is what the query corrects.
const (
	maxRTT            = 2 * time.Second
	maxRootDispersion = 1 * time.Second
	maxRootDelay      = 1 * time.Second
)

// validateResponse rejects unsynchronised, distant or slow servers.
func validateResponse(response *ntp.Response) error {
	if response == nil {
		return oops.New("empty NTP response")
	}
	if response.Leap == ntp.LeapNotInSync {
		return oops.New("server clock not synchronized (leap indicator)")
	}
	if response.Stratum == 0 || response.Stratum > 15 {
		return oops.Errorf("stratum %d out of range", response.Stratum)
	}
	if response.RTT < 0 || response.RTT > maxRTT {
		return oops.Errorf("round-trip delay %v out of bounds", response.RTT)
	}
	if response.Time.IsZero() {
		return oops.New("zero transmit time")
	}
	if response.RootDispersion > maxRootDispersion {
		return oops.Errorf("root dispersion %v too high", response.RootDispersion)
	}
	if response.RootDelay > maxRootDelay {
		return oops.Errorf("root delay %v too high", response.RootDelay)
	}
	return nil
}
