// Package track holds the reconciliation state for the two
// notification channels: flight sightings and hazard alerts. Both
// state objects are pure bookkeeping with no clock and no I/O; each
// is owned by exactly one poller goroutine, so no locking is needed.
package track

// SightingState tracks which flight ids have already been announced
// for their current continuous sighting.
type SightingState struct {
	notified map[string]struct{}
}

// NewSightingState returns an empty sighting state.
func NewSightingState() *SightingState {
	return &SightingState{notified: make(map[string]struct{})}
}

// Reconcile compares the fresh live set against the notified set and
// returns the ids that still owe a notification, in the order they
// appear in currentIDs. Every returned id is marked notified, and the
// notified set is then reduced to exactly the ids present this cycle:
// an id that disappears is forgotten and will notify again if it
// reappears later.
func (s *SightingState) Reconcile(currentIDs []string) []string {
	var due []string
	current := make(map[string]struct{}, len(currentIDs))
	for _, id := range currentIDs {
		if _, seen := current[id]; seen {
			continue
		}
		current[id] = struct{}{}
		if _, ok := s.notified[id]; !ok {
			s.notified[id] = struct{}{}
			due = append(due, id)
		}
	}

	for id := range s.notified {
		if _, ok := current[id]; !ok {
			delete(s.notified, id)
		}
	}
	return due
}

// Size returns the number of ids currently considered notified.
func (s *SightingState) Size() int {
	return len(s.notified)
}

// AlertState tracks which hazard areas are currently under an active
// alert, so repeats are suppressed while an alert episode persists.
type AlertState struct {
	active map[string]struct{}
}

// NewAlertState returns an empty alert state.
func NewAlertState() *AlertState {
	return &AlertState{active: make(map[string]struct{})}
}

// Reconcile replaces the active set with exactly activeAreas and
// returns the areas that were not active before (edge trigger).
// Passing nil clears all state; callers do this on any feed error so
// a stale alert can never stay latched.
func (a *AlertState) Reconcile(activeAreas []string) []string {
	var onset []string
	next := make(map[string]struct{}, len(activeAreas))
	for _, area := range activeAreas {
		if _, seen := next[area]; seen {
			continue
		}
		next[area] = struct{}{}
		if _, ok := a.active[area]; !ok {
			onset = append(onset, area)
		}
	}
	a.active = next
	return onset
}

// ActiveCount returns the number of currently active alert areas.
func (a *AlertState) ActiveCount() int {
	return len(a.active)
}
