package domain

import "time"

// FetchedMeta tracks the two timestamps that drive scheduling and idle
// suppression for one feed (spec.md §3).
type FetchedMeta struct {
	LastFetch     int64 `json:"last-fetch"`
	LastRequested int64 `json:"last-requested"`
}

// NewFetchedMeta returns a FetchedMeta for a freshly-configured feed: never
// fetched, but requested "now" so it isn't immediately idle-suppressed
// (spec.md §3).
func NewFetchedMeta() FetchedMeta {
	return FetchedMeta{LastRequested: time.Now().Unix()}
}

// Fetched stamps LastFetch with the current time.
func (m *FetchedMeta) Fetched() {
	m.LastFetch = time.Now().Unix()
}

// Requested stamps LastRequested with the current time.
func (m *FetchedMeta) Requested() {
	m.LastRequested = time.Now().Unix()
}

// Outdated reports whether a refresh is due (spec.md §4.7).
func (m FetchedMeta) Outdated(interval int64) bool {
	return m.LastFetch+interval < time.Now().Unix()
}

// TimeTilOutdated returns the number of seconds until the feed becomes due,
// or false if it is already due (spec.md §4.6's sleep-until-due loop).
func (m FetchedMeta) TimeTilOutdated(interval int64) (int64, bool) {
	remaining := m.LastFetch + interval - time.Now().Unix()
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// Idle reports whether the feed has passed its idle-suppression window
// (spec.md §4.6).
func (m FetchedMeta) Idle(idleLimit int64) bool {
	return m.LastRequested+idleLimit < time.Now().Unix()
}
