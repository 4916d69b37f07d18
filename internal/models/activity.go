package models

// Activity is a business-category node in the 3-level classification
// tree. Children are populated only by bounded-depth tree reads.
type Activity struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	ParentID *int64      `json:"parent_id,omitempty"`
	Children []*Activity `json:"children,omitempty"`
}
