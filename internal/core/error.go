package core

import "github.com/giantswarm/microerror"

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}

var callbackNotConfiguredError = &microerror.Error{
	Kind: "callbackNotConfiguredError",
}

// IsCallbackNotConfigured asserts callbackNotConfiguredError.
func IsCallbackNotConfigured(err error) bool {
	return microerror.Cause(err) == callbackNotConfiguredError
}

var closedError = &microerror.Error{
	Kind: "closedError",
}

// IsClosed asserts closedError.
func IsClosed(err error) bool {
	return microerror.Cause(err) == closedError
}
