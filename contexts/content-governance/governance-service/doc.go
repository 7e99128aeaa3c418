// Package governanceservice contains the K-Dom content-governance core:
// hierarchy validation, the moderation state machine, the collaboration
// request workflow, the append-only audit trail and activity scoring.
//
// Domain and application logic stay decoupled from runtime concerns through
// ports and adapter composition.
package governanceservice
