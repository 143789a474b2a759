// Package dynamics provides gain-reduction stages for control signals.
//
// SoftLimiter bounds band energies near 1.0 with a tanh soft knee, a fast
// attack and a fixed-step release. It operates on one value per analysis
// frame rather than on audio samples, so its time constants are expressed in
// calls, not milliseconds.
package dynamics
