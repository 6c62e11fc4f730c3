// Package session runs attendance sessions: it advertises this device's
// identifier with a ranked digest of the neighbours it hears, scans for the
// same service, and ends the session when the advertising window elapses.
//
// # State machine
//
//	Idle --Start--> Advertising --(Window elapsed | Stop)--> Idle
//
// Start reports StatusMarked once the broadcast is running. Leaving
// Advertising always stops the broadcast and the scan, clears the
// observation table and reports StatusNotMarked (or StatusAdvertiseFailed
// when a restart failed).
//
// # Concurrency
//
// A single goroutine, Run, owns every state transition. Commands, scan
// frames and timer expirations are delivered to it over channels. Each
// timer carries the generation of the session that armed it; leaving
// Advertising bumps the generation, so a timer that fires late for an
// earlier session is ignored.
//
// Refresh stops the broadcast and restarts it RestartDelay later with a
// freshly ranked digest. It does not move the end of the window.
package session
