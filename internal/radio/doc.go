// Package radio provides domain.RadioAdapter implementations.
//
//   - Air is an in-process medium. Radios attached to it hear each other's
//     broadcasts with a signal strength derived from their distance apart
//     using a log-distance path loss model. Tests and cmd/airsim use it.
//   - Remote talks to an Air served over HTTP by NewHandler: broadcasts
//     are PUT and DELETE requests, scans are a websocket stream of frames.
//   - Gatt drives a real Bluetooth LE adapter on Linux, carrying the
//     payload as 16-bit service data.
//
// Every adapter drops a frame rather than block when the scan channel is
// full.
package radio
