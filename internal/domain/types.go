package domain

import "time"

type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

type Item struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Available   bool    `db:"availability"`
}

// Reservation dates are kept as the literal strings they were booked with.
type Reservation struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ItemID    int64     `db:"item_id"`
	StartDate string    `db:"start_date"`
	EndDate   string    `db:"end_date"`
	CreatedAt time.Time `db:"created_at"`
}
