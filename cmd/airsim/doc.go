// Command airsim serves a simulated classroom air for copresence devices
// that use the "air" radio.
//
// Devices join by address and position. A device's broadcast is PUT to
// /adv/{addr}; its scan is a websocket on /scan/{addr} that receives one
// JSON frame per audible broadcast every tick. Signal strength falls off
// with distance using the same log-distance model the anchor inverts.
//
// Configuration is read from the environment:
//
//	AIRSIM_ADDR       listen address (default :8787)
//	AIRSIM_TICK       delivery interval (default 200ms)
//	AIRSIM_PATH_LOSS  path loss exponent (default 2.7)
//
// Every request is written to the access log. The medium is in memory
// only.
package main
