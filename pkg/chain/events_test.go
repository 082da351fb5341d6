package chain

import (
	"fmt"
	"testing"
)

func ev(pallet, variant string) Event {
	return Event{Pallet: pallet, Variant: variant}
}

func evf(pallet, variant, fields string) Event {
	return Event{Pallet: pallet, Variant: variant, Fields: fields}
}

func TestInterpretSingleCallSuccess(t *testing.T) {
	out := Interpret([]Event{
		ev("SubtensorModule", "NeuronRegistered"),
		ev("System", "ExtrinsicSuccess"),
	})

	if !out.ExtrinsicSucceeded {
		t.Error("expected extrinsic success flag")
	}
	if out.ExtrinsicFailed {
		t.Error("unexpected extrinsic failure flag")
	}
	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	r := out.Results[0]
	if !r.OK || len(r.Events) != 1 || r.Events[0] != "SubtensorModule::NeuronRegistered" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if !out.Registered() {
		t.Error("expected outcome to confirm registration")
	}
	if out.EventCount != 2 {
		t.Errorf("expected 2 processed events, got %d", out.EventCount)
	}
}

func TestInterpretBatchPartialFailure(t *testing.T) {
	out := Interpret([]Event{
		ev("SubtensorModule", "NeuronRegistered"),
		ev("Utility", "ItemCompleted"),
		evf("Utility", "ItemFailed", "X"),
		evf("Utility", "BatchInterrupted", "index=2"),
	})

	if len(out.Results) != 3 {
		t.Fatalf("expected 3 results, got %d: %+v", len(out.Results), out.Results)
	}
	if !out.Results[0].OK || out.Results[0].Events[0] != "SubtensorModule::NeuronRegistered" {
		t.Errorf("unexpected first result: %+v", out.Results[0])
	}
	if out.Results[1].OK || out.Results[1].Reason != "call 1 failed: X" {
		t.Errorf("unexpected second result: %+v", out.Results[1])
	}
	if out.Results[2].OK || out.Results[2].Reason != "batch interrupted at call 2: index=2" {
		t.Errorf("unexpected third result: %+v", out.Results[2])
	}
	if out.Registered() {
		t.Error("a partially failed batch must not confirm registration")
	}
}

func TestInterpretStopsAtBatchInterrupted(t *testing.T) {
	out := Interpret([]Event{
		evf("Utility", "BatchInterrupted", ""),
		ev("SubtensorModule", "NeuronRegistered"),
		ev("System", "ExtrinsicSuccess"),
	})

	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	if out.Results[0].Reason != "batch interrupted at call 0: unknown error" {
		t.Errorf("unexpected reason: %q", out.Results[0].Reason)
	}
	if out.ExtrinsicSucceeded {
		t.Error("events after the interrupt must not be processed")
	}
	if out.EventCount != 1 {
		t.Errorf("expected 1 processed event, got %d", out.EventCount)
	}
}

func TestInterpretExtrinsicFailed(t *testing.T) {
	out := Interpret([]Event{
		ev("SubtensorModule", "NeuronRegistered"),
		evf("System", "ExtrinsicFailed", "module=SubtensorModule"),
	})

	if !out.ExtrinsicFailed {
		t.Fatal("expected extrinsic failure flag")
	}
	if out.FailureDetail != "module=SubtensorModule" {
		t.Errorf("unexpected failure detail: %q", out.FailureDetail)
	}
	if out.Registered() {
		t.Error("a failed extrinsic must not confirm registration")
	}
}

func TestInterpretEmptyStream(t *testing.T) {
	out := Interpret(nil)
	if len(out.Results) != 0 || out.Registered() || out.EventCount != 0 {
		t.Fatalf("unexpected outcome for empty stream: %+v", out)
	}
}

func TestInterpretBatchCompleted(t *testing.T) {
	out := Interpret([]Event{
		ev("SubtensorModule", "NeuronRegistered"),
		ev("Utility", "ItemCompleted"),
		ev("Utility", "BatchCompleted"),
		ev("System", "ExtrinsicSuccess"),
	})

	if !out.BatchCompleted {
		t.Error("expected batch completion flag")
	}
	if len(out.Results) != 1 || !out.Results[0].OK {
		t.Fatalf("unexpected results: %+v", out.Results)
	}
	if !out.Registered() {
		t.Error("expected a fully completed batch to confirm registration")
	}
}

func TestInterpretOtherEventsAccumulate(t *testing.T) {
	out := Interpret([]Event{
		ev("Balances", "Withdraw"),
		ev("SubtensorModule", "NeuronRegistered"),
	})

	if len(out.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out.Results))
	}
	want := []string{"Balances::Withdraw", "SubtensorModule::NeuronRegistered"}
	got := out.Results[0].Events
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("unexpected accumulated events: %v", got)
	}
}

// The interpreter's output length equals the number of completed plus failed
// items seen before an interrupt, plus one entry for the interrupt itself,
// when every completed item emitted at least one event.
func TestInterpretLengthProperty(t *testing.T) {
	for _, tc := range []struct {
		completed, failed int
		interrupted       bool
	}{
		{completed: 1, failed: 0, interrupted: false},
		{completed: 3, failed: 0, interrupted: false},
		{completed: 2, failed: 2, interrupted: false},
		{completed: 2, failed: 1, interrupted: true},
		{completed: 0, failed: 3, interrupted: true},
	} {
		var events []Event
		for i := 0; i < tc.completed; i++ {
			events = append(events, ev("SubtensorModule", "NeuronRegistered"), ev("Utility", "ItemCompleted"))
		}
		for i := 0; i < tc.failed; i++ {
			events = append(events, evf("Utility", "ItemFailed", "boom"))
		}
		if tc.interrupted {
			events = append(events, evf("Utility", "BatchInterrupted", "index=9"))
		}

		want := tc.completed + tc.failed
		if tc.interrupted {
			want++
		}
		out := Interpret(events)
		if len(out.Results) != want {
			t.Errorf("%+v: expected %d results, got %d", tc, want, len(out.Results))
		}
	}
}

func TestInterpretFailureReasonsCarryCallIndex(t *testing.T) {
	var events []Event
	for i := 0; i < 3; i++ {
		events = append(events, evf("Utility", "ItemFailed", fmt.Sprintf("err%d", i)))
	}

	out := Interpret(events)
	for i, r := range out.Results {
		want := fmt.Sprintf("call %d failed: err%d", i, i)
		if r.Reason != want {
			t.Errorf("result %d: expected %q, got %q", i, want, r.Reason)
		}
	}
}

func TestEventLabel(t *testing.T) {
	if got := ev("SubtensorModule", "NeuronRegistered").Label(); got != "SubtensorModule::NeuronRegistered" {
		t.Fatalf("unexpected label: %q", got)
	}
}
