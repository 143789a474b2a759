// Package tempo estimates beats per minute from the frame numbers at which
// beats were detected, and tracks the rendering frame rate that converts
// frame intervals into seconds.
package tempo
