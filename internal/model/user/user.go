package user

// User is an account record. Passwords are kept in the clear because the
// whole auth surface is a mock collaborator, not a real identity system.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin"`
}

// SeedAdmin is the bootstrap administrator created when a store opens empty.
func SeedAdmin() User {
	return User{
		ID:       "admin-1",
		Username: "admin",
		Email:    "admin@insureassist.com",
		Password: "123456",
		IsAdmin:  true,
	}
}
