// Package spectrum provides helpers for one-sided magnitude spectra as they
// arrive from a capture loop: partitioning bins into bass, mid and high
// bands, per-band RMS energy, peak-bin lookup and magnitude extraction from
// complex FFT output.
//
// The package does not implement an FFT. Frequencies are derived from the
// configured sample rate and FFT size, never from the length of the frame
// that is actually delivered, so truncated or padded frames keep their bin
// geometry.
package spectrum
