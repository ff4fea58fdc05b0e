// Package models defines the core records of the budget history graph:
// commits, changes, branches and tags.
package models

// Payload is a free-form entity snapshot attached to a change or commit.
type Payload map[string]any

// Commit is an immutable, hash-identified record of one logical change.
// Once written it is never updated or deleted.
type Commit struct {
	// Hash is the content-derived identifier and primary key.
	Hash string `json:"hash"`
	// Timestamp is the creation instant in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// Message is the human-readable description of the change.
	Message string `json:"message"`
	// Author is the free-text identity of the writer.
	Author string `json:"author"`
	// ParentHash optionally points at a preceding commit. It is supplied
	// by the caller, not derived from the stored head.
	ParentHash string `json:"parentHash,omitempty"`
	// SnapshotData holds the post-change value of the changed entity only,
	// shaped {entityType: {entityId|"main": afterData}, timestamp}.
	SnapshotData Payload `json:"snapshotData"`
	// DeviceFingerprint identifies the writing device or session.
	DeviceFingerprint string `json:"deviceFingerprint"`
}

// Change is the per-entity delta belonging to exactly one commit.
type Change struct {
	// CommitHash references the owning commit.
	CommitHash string `json:"commitHash"`
	// EntityType names the changed entity kind ("unassignedCash", ...).
	EntityType string `json:"entityType"`
	// EntityID identifies the entity instance, or "main" for singletons.
	EntityID string `json:"entityId"`
	// ChangeType is the normalized change kind: create, update or delete.
	ChangeType string `json:"changeType"`
	// Description is the human-readable summary of the delta.
	Description string `json:"description"`
	// BeforeData is the entity value prior to the change ("oldValue" at
	// some call sites).
	BeforeData Payload `json:"beforeData,omitempty"`
	// AfterData is the entity value after the change ("newValue" at some
	// call sites).
	AfterData Payload `json:"afterData,omitempty"`
}

// OldValue is an alias accessor for BeforeData.
func (c Change) OldValue() Payload { return c.BeforeData }

// NewValue is an alias accessor for AfterData.
func (c Change) NewValue() Payload { return c.AfterData }

// Branch is a named, mutable pointer into the commit graph.
// At most one branch is active at a time.
type Branch struct {
	// Name is the globally unique branch name.
	Name string `json:"name"`
	// Description is an optional free-text note.
	Description string `json:"description"`
	// SourceCommitHash is the commit the branch was created from.
	SourceCommitHash string `json:"sourceCommitHash"`
	// HeadCommitHash is the branch head, initialized to the source.
	HeadCommitHash string `json:"headCommitHash"`
	// Author is the identity that created the branch.
	Author string `json:"author"`
	// Created is the creation instant in epoch milliseconds.
	Created int64 `json:"created"`
	// IsActive marks the single currently checked-out branch.
	IsActive bool `json:"isActive"`
	// IsMerged marks a branch that has been merged; the transition is an
	// open extension point and is never performed by this subsystem.
	IsMerged bool `json:"isMerged"`
}

// Tag is a named, immutable pointer to one commit.
type Tag struct {
	// Name is the globally unique tag name.
	Name string `json:"name"`
	// Description is an optional free-text note.
	Description string `json:"description"`
	// CommitHash references the tagged commit.
	CommitHash string `json:"commitHash"`
	// TagType is one of "milestone", "release" or "backup".
	TagType string `json:"tagType"`
	// Author is the identity that created the tag.
	Author string `json:"author"`
	// Created is the creation instant in epoch milliseconds.
	Created int64 `json:"created"`
}

// Entity types tracked by the history engine.
const (
	EntityUnassignedCash = "unassignedCash"
	EntityActualBalance  = "actualBalance"
	EntityDebt           = "debt"
)

// SingletonEntityID is stored for entities that exist exactly once.
const SingletonEntityID = "main"

// TrackedEntityTypes returns the closed set of entity types covered by the
// cross-entity activity feed.
func TrackedEntityTypes() []string {
	return []string{EntityUnassignedCash, EntityActualBalance, EntityDebt}
}

// Normalized change types.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
)

// Tag types.
const (
	TagMilestone = "milestone"
	TagRelease   = "release"
	TagBackup    = "backup"
)

// NormalizeChangeType maps raw tracker inputs onto the closed change-type
// set: "add" and "create" become create, "delete" stays delete, and every
// other value (including "modify") becomes update.
func NormalizeChangeType(raw string) string {
	switch raw {
	case "add", ChangeCreate:
		return ChangeCreate
	case ChangeDelete:
		return ChangeDelete
	default:
		return ChangeUpdate
	}
}
