package models

// Student is referenced by results and attendance; identities come from the identity provider.
type Student struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
	ClassID *int64 `db:"class_id" json:"class_id,omitempty"`
}

// DisplayName joins name and surname.
func (s Student) DisplayName() string {
	if s.Surname == "" {
		return s.Name
	}
	return s.Name + " " + s.Surname
}
