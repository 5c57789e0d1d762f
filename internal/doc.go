// Package internal contains helper utilities that are intentionally private
// to aajourney, including secure random generation for operation references.
//
// # Sub-packages
//
//   - rate — core Redis-backed OTP attempt budget primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public aajourney API.
//   - Be imported by any package outside the aajourney module.
package internal
