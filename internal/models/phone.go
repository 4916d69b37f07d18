package models

// Phone is a contact number exclusively owned by one organization.
type Phone struct {
	ID             int64  `json:"id"`
	Number         string `json:"number"`
	OrganizationID int64  `json:"organization_id"`
}
