package models

// Organization is a directory entry. Building and Activities are
// referenced, not owned; Phones are owned and die with the organization.
type Organization struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	BuildingID int64      `json:"building_id"`
	Building   *Building  `json:"building,omitempty"`
	Phones     []Phone    `json:"phones,omitempty"`
	Activities []Activity `json:"activities,omitempty"`
}
