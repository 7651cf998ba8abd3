package core

import "github.com/giantswarm/microerror"

// Host is the capability set the machine drives: emit the stimulus, clear it,
// and receive debug lines.
//
// Host methods run synchronously inside the machine's critical section and
// must not call back into the machine on the same goroutine.
type Host interface {
	EmitSignal() error
	StopSignal() error
	DebugLog(line string)
}

// HostFuncs adapts plain functions to Host. A nil Signal or Stop function is
// reported as callbackNotConfiguredError when the machine needs it; a nil
// Debug function discards lines.
type HostFuncs struct {
	Signal func()
	Stop   func()
	Debug  func(line string)
}

func (h HostFuncs) EmitSignal() error {
	if h.Signal == nil {
		return microerror.Maskf(callbackNotConfiguredError, "signal callback not configured")
	}
	h.Signal()
	return nil
}

func (h HostFuncs) StopSignal() error {
	if h.Stop == nil {
		return microerror.Maskf(callbackNotConfiguredError, "signal stop callback not configured")
	}
	h.Stop()
	return nil
}

func (h HostFuncs) DebugLog(line string) {
	if h.Debug != nil && line != "" {
		h.Debug(line)
	}
}

// Configured reports whether both signal callbacks are installed.
func (h HostFuncs) Configured() error {
	if h.Signal == nil {
		return microerror.Maskf(callbackNotConfiguredError, "signal callback not configured")
	}
	if h.Stop == nil {
		return microerror.Maskf(callbackNotConfiguredError, "signal stop callback not configured")
	}
	return nil
}
