package types

// Version is the canonical project version.
// The CLI, the run-completed event, and the artifact records share it.
const Version = "0.3.0"

// EventContractVersion is stamped on run-completed notifications.
// Bumped in lockstep with Version.
const EventContractVersion = Version
