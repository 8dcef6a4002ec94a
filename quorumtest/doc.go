// Package quorumtest provides helpers for testing the quorum engine:
// deterministic keys, signing helpers and stores.
package quorumtest
