// Package refill decides when a just-filled form gets one more fill pass.
//
// Pages often rebuild or reformat a form right after it was autofilled. The
// Controller keeps a FillingContext per form and walks it through
// NoFill, Filled, RefillScheduled and RefillAttempted. A refill is scheduled
// on a Scheduler as a Task holding copied data and a cancellation token;
// when it fires, the owner calls Begin and reruns the fill with the forced
// values the task carries.
package refill
