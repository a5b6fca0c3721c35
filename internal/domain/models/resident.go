package models

// Community is the tenant boundary. Every scoped query carries its id.
type Community struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Unit is a house/apartment within a community.
type Unit struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"community_id"`
	Code        string `json:"code"`
}

// Resident links a user account to the unit they occupy.
type Resident struct {
	ID          int64  `json:"id"`
	CommunityID int64  `json:"community_id"`
	UnitID      int64  `json:"unit_id"`
	UserID      int64  `json:"user_id"`
	Status      string `json:"status"`
}
