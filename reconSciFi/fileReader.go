package main

import (
	"fmt"
	"io"

	scifi "github.com/next-exp/scifi_go/pkg"
)

// EventReader hands out the events of an input file honoring the skip and
// max_events settings.
type EventReader struct {
	Events   []scifi.EventPulses
	EvtCount int
	next     int
	skip     int
	max      int
}

func NewEventReader(events []scifi.EventPulses, skip int, maxEvents int) *EventReader {
	return &EventReader{Events: events, EvtCount: -1, skip: skip, max: maxEvents}
}

func (r *EventReader) getNextEvent() (scifi.EventPulses, error) {
	for {
		if r.next >= len(r.Events) {
			return scifi.EventPulses{}, io.EOF
		}
		event := r.Events[r.next]
		r.next++
		r.EvtCount++
		if r.EvtCount >= r.max {
			if VerbosityLevel > 0 {
				logger.Info("Max events reached", "fileReader")
			}
			return scifi.EventPulses{}, io.EOF
		}
		if r.EvtCount < r.skip {
			if VerbosityLevel > 1 {
				message := fmt.Sprintf("Skipping event %d with ID %d", r.EvtCount, event.ID)
				logger.Info(message, "fileReader")
			}
			continue
		}
		if VerbosityLevel > 1 {
			message := fmt.Sprintf("Reading event %d with ID %d", r.EvtCount, event.ID)
			logger.Info(message, "fileReader")
		}
		return event, nil
	}
}

func numberOfEventsToProcess(fileEvtCount int, skipEvts int, maxEvtCount int) int {
	evtsToRead := maxEvtCount - skipEvts
	if evtsToRead > fileEvtCount-skipEvts {
		evtsToRead = fileEvtCount - skipEvts
	}
	if evtsToRead < 0 {
		evtsToRead = 0
	}
	return evtsToRead
}
