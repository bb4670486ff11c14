package model

// ContactMessage is a free-text inquiry from a user, stored together with
// its machine translation and coarse category.
type ContactMessage struct {
	UserID      string
	Message     string
	Category    string
	Translation string
	OrderID     string
}
