package observability

import (
	"testing"
	"time"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordOutcome("user_login", "OK", 10*time.Millisecond)
	m.RecordOutcome("user_login", "UNAUTHORIZED", 30*time.Millisecond)
	m.RecordOutcome("verify_token", "OK", time.Millisecond)

	snap := m.Snapshot()
	login := snap["user_login"]
	if login.Total != 2 || login.Outcomes["OK"] != 1 || login.Outcomes["UNAUTHORIZED"] != 1 {
		t.Errorf("user_login stats = %+v", login)
	}
	if login.MeanDuration != 20*time.Millisecond {
		t.Errorf("MeanDuration = %v, want 20ms", login.MeanDuration)
	}

	// snapshot is a copy
	login.Outcomes["OK"] = 100
	if m.Snapshot()["user_login"].Outcomes["OK"] != 1 {
		t.Error("Snapshot() shares state with Metrics")
	}

	var nilMetrics *Metrics
	nilMetrics.RecordOutcome("x", "OK", 0)
	if nilMetrics.Snapshot() != nil {
		t.Error("nil Metrics snapshot != nil")
	}
}
