package models

// User owns a set of habits. Habits are not shared between users.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
