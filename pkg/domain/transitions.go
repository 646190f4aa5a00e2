package domain

// Transition is one edge of the navigation state machine.
type Transition struct {
	From    Screen
	Trigger Trigger
	To      Screen
}

// Transitions lists every legal edge. Anything else is rejected with a TransitionError.
var Transitions = []Transition{
	{ScreenHome, TriggerStartInput, ScreenInput},
	{ScreenInput, TriggerSubmit, ScreenLoading},
	{ScreenLoading, TriggerFetchSuccess, ScreenResult},
	{ScreenLoading, TriggerFetchFailure, ScreenError},
	{ScreenResult, TriggerRestart, ScreenInput},
	{ScreenError, TriggerRetry, ScreenHome},
}

// Screens lists the screens in presentation order.
var Screens = []Screen{ScreenHome, ScreenInput, ScreenLoading, ScreenResult, ScreenError}

// Next returns the destination of trigger from the given screen.
func Next(from Screen, trigger Trigger) (Screen, bool) {
	for _, t := range Transitions {
		if t.From == from && t.Trigger == trigger {
			return t.To, true
		}
	}
	return "", false
}
