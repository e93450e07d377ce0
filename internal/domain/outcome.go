package domain

// Outcome is the result of handling one change event.
type Outcome string

const (
	OutcomeUnchanged        Outcome = "unchanged"
	OutcomeNonTerminal      Outcome = "non_terminal"
	OutcomeMalformedUserRef Outcome = "malformed_user_ref"
	OutcomeUserNotFound     Outcome = "user_not_found"
	OutcomeNoDevice         Outcome = "no_device"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeSent             Outcome = "sent"
	OutcomeFailed           Outcome = "failed"
)

// Outcomes lists every outcome, in decision order.
func Outcomes() []Outcome {
	return []Outcome{
		OutcomeUnchanged,
		OutcomeNonTerminal,
		OutcomeMalformedUserRef,
		OutcomeUserNotFound,
		OutcomeNoDevice,
		OutcomeDuplicate,
		OutcomeSent,
		OutcomeFailed,
	}
}
