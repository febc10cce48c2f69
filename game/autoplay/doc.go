// Package autoplay plays a game automatically toward a target score.
//
// A Runner alternates policy decisions and engine moves. Each call to Step
// is one cycle, so hosts can interleave rendering or cancellation between
// cycles; Run is the plain loop over Step. Every CheckpointInterval moves
// the runner keeps a Checkpoint (most recent MaxCheckpoints only) and, when
// the game is lost, restores one a few entries back and tries again, up to
// MaxRetries times.
package autoplay
