package combat

// DeathSaveTracker follows a dying participant's progress. It exists only
// while the participant is at zero hit points; healing above zero discards it.
type DeathSaveTracker struct {
	Successes int  `json:"successes"`
	Failures  int  `json:"failures"`
	Stable    bool `json:"stable"`
	Dead      bool `json:"dead"`
}

// RecordSuccess adds a success, stabilizing at three
func (t *DeathSaveTracker) RecordSuccess() {
	if t.Stable || t.Dead {
		return
	}
	t.Successes++
	if t.Successes >= 3 {
		t.Successes = 3
		t.Stable = true
	}
}

// RecordFailure adds the given number of failures, killing at three
func (t *DeathSaveTracker) RecordFailure(count int) {
	if t.Stable || t.Dead {
		return
	}
	t.Failures += count
	if t.Failures >= 3 {
		t.Failures = 3
		t.Dead = true
	}
}

// Settled reports whether the tracker has reached a terminal state
func (t *DeathSaveTracker) Settled() bool {
	return t.Stable || t.Dead
}
