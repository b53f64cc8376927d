package scifi

import (
	"fmt"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
)

// Discriminate turns the time-sorted photon arrivals of one channel into
// digitized pulses.
//
// An arming window of ThresholdTime opens at the first unconsumed arrival.
// When Threshold arrivals fall inside it, a pulse starts at the arrival that
// reached the threshold and every arrival within TimeWindow of that start
// is integrated into its photon count. The channel is then dead for
// DeadTime after the integration window closes. A window that never
// reaches the threshold is skipped as a whole.
func Discriminate(eventID int32, channelID int32, times []float64, p DiscriminatorParams) []DigitizedPulse {
	n := len(times)
	if p.Threshold < 1 || n < p.Threshold {
		return nil
	}

	var pulses []DigitizedPulse
	for s := 0; s < n; {
		if n-s < p.Threshold {
			break
		}

		armEnd := times[s] + p.ThresholdTime
		j := s
		count := 1
		for count < p.Threshold && j+1 < n && times[j+1] < armEnd {
			j++
			count++
		}
		if count < p.Threshold {
			s = j + 1
			continue
		}

		start := times[j]
		windowEnd := start + p.TimeWindow
		k := j + 1
		for k < n && times[k] < windowEnd {
			count++
			k++
		}
		pulses = append(pulses, DigitizedPulse{
			EventID:     eventID,
			ChannelID:   channelID,
			Time:        start,
			PhotonCount: count,
		})

		deadEnd := windowEnd + p.DeadTime
		for k < n && times[k] < deadEnd {
			k++
		}
		s = k
	}

	if verbosity > 3 {
		message := fmt.Sprintf("Channel %d: %d arrivals, %d pulses", channelID, n, len(pulses))
		logger.Info(message, "discriminator")
	}
	return pulses
}

// DiscriminateEvent runs the discriminator on every channel of one event.
// Channels are independent; with parallel set they are spread over
// GOMAXPROCS goroutines. The output is ordered by (channel, time).
func DiscriminateEvent(eventID int32, raw []RawPulse, p DiscriminatorParams, parallel bool) []DigitizedPulse {
	byChannel := make(map[int32][]float64)
	for _, pulse := range raw {
		byChannel[pulse.ChannelID] = append(byChannel[pulse.ChannelID], pulse.Time)
	}
	channels := maps.Keys(byChannel)
	slices.Sort(channels)

	results := make([][]DigitizedPulse, len(channels))
	process := func(i int) {
		times := byChannel[channels[i]]
		slices.Sort(times)
		results[i] = Discriminate(eventID, channels[i], times, p)
	}

	if parallel && len(channels) > 1 {
		var wg sync.WaitGroup
		sem := make(chan struct{}, runtime.GOMAXPROCS(0))
		for i := range channels {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				process(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range channels {
			process(i)
		}
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	pulses := make([]DigitizedPulse, 0, total)
	for _, r := range results {
		pulses = append(pulses, r...)
	}

	if verbosity > 2 {
		message := fmt.Sprintf("Event %d: %d raw arrivals on %d channels, %d digitized pulses",
			eventID, len(raw), len(channels), len(pulses))
		logger.Info(message, "discriminator")
	}
	return pulses
}
