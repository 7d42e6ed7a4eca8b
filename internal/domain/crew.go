package domain

// CrewMember is an entry in the crew directory. The planner only needs
// the name for warning text; contact fields ride along for the roster
// views.
type CrewMember struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
}

// CrewDirectory maps crew id to member for message rendering.
type CrewDirectory map[string]CrewMember

// NameOf returns the member's display name, or "Unknown crew" when the
// id is not in the directory.
func (d CrewDirectory) NameOf(crewID string) string {
	if m, ok := d[crewID]; ok && m.Name != "" {
		return m.Name
	}
	return "Unknown crew"
}
