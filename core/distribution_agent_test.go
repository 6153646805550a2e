package core

import "testing"

func TestDistributionAgentSelectsRegisteredCandidates(t *testing.T) {
	agent := NewDistributionAgent()
	l1, l2, l3 := &Looper{}, &Looper{}, &Looper{}
	agent.AddCandidate(l1)
	agent.AddCandidate(l2)
	agent.AddCandidate(l3)

	seen := make(map[*Looper]bool)
	for i := 0; i < 100; i++ {
		candidate, idx := agent.SelectCandidate()
		if idx < 0 || idx >= 3 {
			t.Fatalf("SelectCandidate() idx = %d, want in [0,3)", idx)
		}
		seen[candidate] = true
	}
	if len(seen) == 0 {
		t.Fatal("SelectCandidate() never returned a registered candidate")
	}
}

func TestDistributionAgentPanicsWithNoCandidates(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("SelectCandidate() with no candidates did not panic")
		}
	}()
	NewDistributionAgent().SelectCandidate()
}
