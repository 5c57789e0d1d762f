// Package rate provides internal primitives used to build Redis-backed OTP
// attempt budgets for the consent journey.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are
// prefixed "ajo:" and scoped by OTP kind plus consent handle, so a budget
// survives journey resets for the same consent request.
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the journey engine does).
//   - Be imported outside the aajourney module.
package rate
