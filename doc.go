// Package aajourney drives the client side of an RBI Account Aggregator
// consent journey: login, OTP verification, FIP selection, account discovery,
// account linking, and consent approval/denial against an injected AA network
// client, with optional Redis-backed journey snapshots and signed resume
// tokens.
//
// A [Journey] owns exactly one consent journey, identified by the consent
// handle supplied to [Journey.Start]. All state mutation flows through an
// internal pure reducer; operations validate local preconditions, perform at
// most one in-flight network call, and apply the result atomically.
//
// # Architecture boundaries
//
// aajourney is the public surface. It exposes [Journey], [Builder], [Config],
// the [Client] contract, and the journey value types. Snapshot encoding lives
// under snapshot/, resume token signing under token/, and OTP throttling
// under internal/ — none of those leak into the public API beyond
// configuration.
//
// # What this package must NOT do
//
//   - Render anything. Step-to-screen mapping belongs to the caller.
//   - Touch the finance-tracking data store. The only side effects are
//     [Client] calls, snapshot writes, and audit emission.
//   - Implement the AA wire protocol. The certified SDK behind [Client]
//     owns transport, crypto, and timeouts.
//
// # Failure contract
//
// Local precondition failures return a sentinel error and leave the journey
// on its current step. Remote failures move the journey to [StepError] with
// the remote message recorded; the only way forward from there is
// [Journey.Reset]. Cleanup failures during reset are logged and never block
// the reset.
package aajourney
