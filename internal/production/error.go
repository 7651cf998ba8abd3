package production

import "github.com/giantswarm/microerror"

var unknownFormatError = &microerror.Error{
	Kind: "unknownFormatError",
}

// IsUnknownFormat asserts unknownFormatError.
func IsUnknownFormat(err error) bool {
	return microerror.Cause(err) == unknownFormatError
}

var invalidConfigError = &microerror.Error{
	Kind: "invalidConfigError",
}

// IsInvalidConfig asserts invalidConfigError.
func IsInvalidConfig(err error) bool {
	return microerror.Cause(err) == invalidConfigError
}
