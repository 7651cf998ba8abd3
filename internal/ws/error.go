package ws

import "github.com/giantswarm/microerror"

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}

var invalidCommandError = &microerror.Error{
	Kind: "invalidCommandError",
}

// IsInvalidCommand asserts invalidCommandError.
func IsInvalidCommand(err error) bool {
	return microerror.Cause(err) == invalidCommandError
}
