package domain

// User is the slice of the platform's user record the notification core
// needs. The full profile (resume, skills, subscription) is owned by the
// user service and never crosses into this module.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
}
