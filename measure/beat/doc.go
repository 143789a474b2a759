// Package beat implements adaptive onset detection on byte-scaled magnitude
// spectra.
//
// An [Analyzer] is fed one frame per host callback. It splits the frame into
// bass, mid and high bands, measures their RMS energy and keeps two
// exponential moving averages per band: a fast track used for detection and
// a slower visual track that is reported to consumers. Beats fire when the
// fast track rises far enough above a slowly adapting baseline and above an
// absolute floor. A short warmup calibrates the baseline before detection is
// enabled, and a cooldown after every bass beat suppresses retriggering.
//
// Every operation is total: empty frames produce a zero [Result], and NaN or
// Inf input propagates through the arithmetic without panicking.
package beat
