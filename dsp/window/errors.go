package window

import "errors"

var errMismatchedLength = errors.New("window: samples and coefficients must have same length")
