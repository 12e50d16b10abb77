package jobs

// Profile holds the matching criteria a user entered in their profile.
// All preference lists may be empty; the matching core treats an absent
// preference as neutral rather than a penalty.
type Profile struct {
	ID             string   `json:"id"`
	Skills         []string `json:"skills,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	JobTypes       []string `json:"job_types,omitempty"`
	MinSalary      *int     `json:"min_salary,omitempty"`
	ClearanceLevel string   `json:"clearance_level,omitempty"`
	ServiceBranch  string   `json:"service_branch,omitempty"`
}
