// Package testsupport provides environment-driven unit/integration test mode
// detection, adapted from the teacher's internal/testing helpers. Renamed to
// avoid shadowing the standard library's testing package in every importer.
package testsupport

import (
	"os"
	"testing"
)

// Unit reports whether the current run should stay in unit-test mode: fast,
// no external services. Controlled by SMARTLOG_UNIT_TESTS_ONLY /
// SMARTLOG_RUN_INTEGRATION_TESTS; with neither set it reports true, whether
// or not -short is given.
func Unit() bool {
	if os.Getenv("SMARTLOG_UNIT_TESTS_ONLY") == "true" {
		return true
	}
	if os.Getenv("SMARTLOG_RUN_INTEGRATION_TESTS") == "true" {
		return false
	}
	if os.Getenv("SMARTLOG_RUN_INTEGRATION_TESTS") == "false" {
		return true
	}
	if testing.Short() {
		return true
	}
	return true
}

// Integration reports the complement of Unit.
func Integration() bool {
	return !Unit()
}

// SkipIfUnit skips t when running in unit-test mode.
func SkipIfUnit(t *testing.T, message ...string) {
	if Unit() {
		msg := "skipping integration test in unit mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}

// SkipIfIntegration skips t when running in integration-test mode.
func SkipIfIntegration(t *testing.T, message ...string) {
	if Integration() {
		msg := "skipping unit-only test in integration mode"
		if len(message) > 0 {
			msg = message[0]
		}
		t.Skip(msg)
	}
}
