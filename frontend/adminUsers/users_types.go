package adminusers

import "time"

type UserView struct {
	ID        int64     `bun:"id"`
	Username  string    `bun:"username"`
	Role      string    `bun:"role"`
	CreatedAt time.Time `bun:"created_at"`
}

type PageData struct {
	Users        []UserView
	Roles        []string
	Status       string
	ErrorMessage string
}
