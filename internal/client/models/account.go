package models

// Account is the account document returned by the backend.
type Account struct {
	ID       string `json:"$id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	Bio      string `json:"bio"`
}

// ToUser projects the backend document onto the session identity.
func (a *Account) ToUser() User {
	if a == nil {
		return EmptyUser
	}
	return User{
		ID:       a.ID,
		Name:     a.Name,
		Username: a.Username,
		Email:    a.Email,
		ImageURL: a.ImageURL,
		Bio:      a.Bio,
	}
}
