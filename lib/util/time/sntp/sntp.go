package sntp

import (
	"slices"
	"strings"
	"time"

	"github.com/beevik/ntp"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/util/time/monotonic"
)

var log = logger.GetGoI2PLogger()

type NTPClient interface {
	QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error)
}

type DefaultNTPClient struct{}

func (c *DefaultNTPClient) QueryWithOptions(host string, options ntp.QueryOptions) (*ntp.Response, error) {
	return ntp.QueryWithOptions(host, options)
}

// ParseServers splits a comma-separated server list, dropping blanks.
func ParseServers(list string) []string {
	var servers []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	return servers
}

// QueryOffset asks every server once and returns the median offset of the
// responses that pass validation. It fails only if none do.
func QueryOffset(client NTPClient, servers []string, timeout time.Duration) (time.Duration, error) {
	if len(servers) == 0 {
		return 0, oops.New("no NTP servers configured")
	}
	var offsets []time.Duration
	var lastErr error
	for _, server := range servers {
		response, err := client.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
		if err == nil {
			err = validateResponse(response)
		}
		if err != nil {
			log.WithError(err).WithField("server", server).Debug("NTP query failed")
			lastErr = oops.Wrapf(err, "query %s", server)
			continue
		}
		log.WithFields(logger.Fields{
			"at":      "sntp.QueryOffset",
			"server":  server,
			"offset":  response.ClockOffset,
			"rtt":     response.RTT,
			"stratum": response.Stratum,
		}).Debug("NTP sample accepted")
		offsets = append(offsets, response.ClockOffset)
	}
	if len(offsets) == 0 {
		return 0, lastErr
	}
	return calculateMedian(offsets), nil
}

// Correct applies the measured offset to clock.
func Correct(clock *monotonic.Clock, client NTPClient, servers []string, timeout time.Duration) error {
	offset, err := QueryOffset(client, servers, timeout)
	if err != nil {
		return err
	}
	clock.SetOffset(offset)
	log.WithFields(logger.Fields{
		"at":     "sntp.Correct",
		"offset": offset,
	}).Info("clock corrected from NTP")
	return nil
}

// calculateMedian computes the median of a non-empty slice, averaging the two
// middle values for even lengths.
func calculateMedian(deltas []time.Duration) time.Duration {
	sorted := slices.Clone(deltas)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
