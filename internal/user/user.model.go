package user

import "time"

type User struct {
	ID               string     `json:"id"`
	ClerkID          string     `json:"clerkId"`
	Email            string     `json:"email"`
	Username         string     `json:"username"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	ImageURL         string     `json:"imageUrl,omitempty"`
	QuitDate         *time.Time `json:"quitDate,omitempty"`
	CigarettesPerDay *int       `json:"cigarettesPerDay,omitempty"`
	PackPrice        *float64   `json:"packPrice,omitempty"`
	Currency         string     `json:"currency,omitempty"`
	IsVerified       bool       `json:"isVerified"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
