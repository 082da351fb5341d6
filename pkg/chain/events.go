package chain

import (
	"fmt"
	"strings"
)

const subtensorPrefix = "SubtensorModule::"

// CallResult is the outcome of one call inside a finalized extrinsic:
// either OK with the event labels the call emitted, or failed with a reason.
type CallResult struct {
	OK     bool
	Events []string
	Reason string
}

func successResult(events []string) CallResult {
	return CallResult{OK: true, Events: events}
}

func failedResult(reason string) CallResult {
	return CallResult{Reason: reason}
}

// Outcome is the interpretation of a finalized extrinsic's ordered event
// list.
type Outcome struct {
	Results            []CallResult
	ExtrinsicSucceeded bool
	ExtrinsicFailed    bool
	FailureDetail      string
	BatchCompleted     bool
	EventCount         int
}

// Interpret classifies the event list of a single finalized extrinsic.
// Utility batch markers delimit per-call results; business events accumulate
// into the current call. Event order is authoritative; a BatchInterrupted
// terminates interpretation. Pure: no I/O, trivially testable with fixtures.
//
// Non-batched single-call submissions produce zero or one result entry.
func Interpret(events []Event) Outcome {
	var out Outcome
	var acc []string
	callIndex := 0

loop:
	for _, ev := range events {
		out.EventCount++
		switch {
		case ev.Pallet == "Utility" && ev.Variant == "ItemCompleted":
			if len(acc) > 0 {
				out.Results = append(out.Results, successResult(acc))
				acc = nil
			}
			callIndex++
		case ev.Pallet == "Utility" && ev.Variant == "ItemFailed":
			out.Results = append(out.Results, failedResult(
				fmt.Sprintf("call %d failed: %s", callIndex, detailOrUnknown(ev))))
			acc = nil
			callIndex++
		case ev.Pallet == "Utility" && ev.Variant == "BatchInterrupted":
			out.Results = append(out.Results, failedResult(
				fmt.Sprintf("batch interrupted at call %d: %s", callIndex, detailOrUnknown(ev))))
			break loop
		case ev.Pallet == "Utility" && ev.Variant == "BatchCompleted":
			out.BatchCompleted = true
		case ev.Pallet == "System" && ev.Variant == "ExtrinsicSuccess":
			out.ExtrinsicSucceeded = true
		case ev.Pallet == "System" && ev.Variant == "ExtrinsicFailed":
			out.ExtrinsicFailed = true
			out.FailureDetail = ev.Fields
		default:
			acc = append(acc, ev.Label())
		}
	}

	// Events of the last call when no terminator followed them.
	if len(acc) > 0 {
		out.Results = append(out.Results, successResult(acc))
	}
	return out
}

func detailOrUnknown(ev Event) string {
	if ev.Fields == "" {
		return "unknown error"
	}
	return ev.Fields
}

// Registered reports whether the outcome confirms a subnet registration: no
// extrinsic-level failure, no failed calls, and at least one SubtensorModule
// event observed.
func (o Outcome) Registered() bool {
	if o.ExtrinsicFailed {
		return false
	}
	seen := false
	for _, r := range o.Results {
		if !r.OK {
			return false
		}
		for _, label := range r.Events {
			if strings.HasPrefix(label, subtensorPrefix) {
				seen = true
			}
		}
	}
	return seen
}
