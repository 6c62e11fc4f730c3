// Package anchor implements the classroom anchor, node 0.
//
// The anchor does not advertise. It scans for the attendance service,
// decodes every digest it hears and turns the signal strengths into
// distance estimates between devices:
//   - each pair in a digest yields a sender-to-peer sample, computed with
//     the sender's reference power and kept only beyond distance.MinMeters;
//   - the frame's own signal strength yields an anchor-to-sender sample.
//
// When the scan ends the samples are reduced with distance.Best and the
// resulting ScanReport is saved to the attendance store.
package anchor
