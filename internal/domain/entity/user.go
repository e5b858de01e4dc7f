package entity

// UserSummary is the lightweight shape a user reference resolves into
// when processes and incidents are read for reporting.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName returns the user's name, or an empty string for a nil summary.
func (u *UserSummary) DisplayName() string {
	if u == nil {
		return ""
	}
	return u.Name
}
