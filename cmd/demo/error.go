package main

import "github.com/giantswarm/microerror"

var quitError = &microerror.Error{
	Kind: "quitError",
}

// IsQuit asserts quitError.
func IsQuit(err error) bool {
	return microerror.Cause(err) == quitError
}
