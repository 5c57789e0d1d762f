// Package snapshot persists journey state to Redis as versioned binary
// records so an interrupted consent journey can be resumed after process
// death.
//
// The record layout is length-prefixed and versioned; decoding rejects
// unknown versions instead of guessing. Records never contain OTP values,
// only the opaque references the AA network issued.
package snapshot
