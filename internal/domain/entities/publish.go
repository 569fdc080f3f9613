package entities

import "time"

// PlanAction is the publish decision for one file
type PlanAction string

// Publish plan actions
const (
	ActionCreate PlanAction = "create"
	ActionUpdate PlanAction = "update"
	ActionSkip   PlanAction = "skip"
)

// PublishPlan is the planner's decision for a single validated file
type PublishPlan struct {
	File        SpatialFile
	Slug        string
	Action      PlanAction
	Reason      string
	ContentHash string
	Version     int // version the publish will carry; unchanged for skip
}

// PublishRecord describes the remote state after a successful publish.
// The version increments only when the content hash changes.
type PublishRecord struct {
	Slug        string
	DatasetID   string
	ResourceIDs map[string]string // format -> resource id
	ContentHash string
	Version     int
	PublishedAt time.Time
}
