// Package version holds the release version of the player module.
package version

// Version is the current release, reported by `playerctl version`.
const Version = "0.1.0"

// Module is the import path of this module.
const Module = "github.com/mesh-intelligence/player"
