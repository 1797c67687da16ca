// Package action tracks one user-invoked command as a telemetry session.
//
// Each invocation gets a fresh Action: a journey identifier that correlates
// every event the invocation emits, the command label, a mutable string
// property bag, and a result tag that starts at Succeeded and moves to
// Failed or Canceled at most once.
//
// A Runner wraps the unit of work: it times it, classifies any error,
// finalizes the result tag, and sends exactly one summary event to the
// reporter (or none, when the action opted into SuppressIfSuccessful and
// succeeded). Runner.Invoke returns the outcome as a tag for hosts that do
// their own presentation; Runner.Run is the top-level boundary that absorbs
// the error, appends it to the diagnostic log, and shows a user-facing
// message.
package action
