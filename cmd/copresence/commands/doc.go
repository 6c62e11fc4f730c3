// Package commands defines the copresence CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - id set <roll>   Store the roll number this device broadcasts
//   - id show         Print the stored roll number and its peer id
//   - mark            Run one attendance session
//   - anchor          Scan as the classroom anchor and record a report
//   - history         List recorded scan reports, or show one by id
//
// # Implementation
//
// Settings come from COPRESENCE_* environment variables and are overridden
// by flags. The root command builds an app.Wire before any subcommand
// runs; the radio and the attendance ledger are opened only by the
// commands that use them.
package commands
