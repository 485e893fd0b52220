package domain

// Group lifecycle (creation, member add/remove) belongs to an external
// collaborator. This core only reads membership.
type Group struct {
	ID          string
	Name        string
	Description string
	AdminID     string
	Members     []string // user ids
}

func (g Group) IsMember(userID string) bool {
	for _, id := range g.Members {
		if id == userID {
			return true
		}
	}
	return false
}
