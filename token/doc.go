// Package token issues and verifies signed resume tokens that bind a
// journey ID to the epoch it was minted for, so a restored journey can
// reject tokens from before a reset.
package token
