package senders

// Outcome is the normalized result of one channel send. Senders never let a
// transport error escape past their boundary; everything collapses into
// this shape.
type Outcome struct {
	Success bool
	// Skipped marks a channel that was intentionally not attempted (e.g. a
	// disconnected integration). Not counted as a failure.
	Skipped bool
	Error   string
}

// WebhookOutcome extends Outcome for generic webhook posts, where the
// detected destination type and the raw HTTP response aid debugging and
// drive the delivery tracker's state machine.
type WebhookOutcome struct {
	Outcome
	Type         DestinationType
	StatusCode   int
	ResponseBody string
}

func success() Outcome {
	return Outcome{Success: true}
}

func failure(msg string) Outcome {
	return Outcome{Error: msg}
}

func skipped() Outcome {
	return Outcome{Skipped: true}
}
