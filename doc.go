// Package reactiontask runs a reaction-time measurement session.
//
// A Session drives a fixed state machine:
//
//	WaitForStart -> Idle -> SendSignal -> WaitResponse -> ProcessResponse -> Idle
//
// Idle arms a random inter-signal delay. When it elapses the host is asked
// to emit the stimulus and a response timeout is armed. Either the host
// reports a response (RespondToStimulus) or the timeout fires, and the
// reaction time is recorded against the time elapsed since start. Recorded
// data is grouped by milestones and exported as nested arrays, JSON or YAML.
//
// The host is any implementation of Host, or HostFuncs for plain functions.
// Host callbacks run inside the session's critical section and must not call
// back into the Session on the same goroutine.
package reactiontask
