package domain

// RequestContext carries the authenticated identity scoping a request.
// Every tenant-scoped read and write takes it, so a handler can never
// reach another community's rows by forgetting a predicate.
type RequestContext struct {
	UserID      int64  `json:"userId"`
	CommunityID int64  `json:"communityId"`
	Role        string `json:"role"`
}
