package types

// Tenant is the isolation key under which all indexed data is scoped.
// Every store row, graph node, and graph edge belongs to exactly one tenant;
// no operation crosses tenant boundaries.
type Tenant struct {
	UserID    string `json:"user_id"`
	ProjectID string `json:"project_id"`
}

// Validate checks that both tenant components are present.
func (t Tenant) Validate() error {
	if t.UserID == "" {
		return ErrMissingUserID
	}
	if t.ProjectID == "" {
		return ErrMissingProjectID
	}
	return nil
}

// Key returns a stable composite key suitable for registry maps.
func (t Tenant) Key() string {
	return t.UserID + "/" + t.ProjectID
}
