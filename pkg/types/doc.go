// Package types defines the player and player-class records, the
// inheritance and permission model that governs them, the namespace index,
// and the collaborator interfaces (record storage, token ownership, key
// derivation) the model runs against.
//
// Entity methods operate on in-memory records only. A method either applies
// the whole change or returns an error and leaves the record untouched; the
// caller persists the result through a RecordStore.
package types
