package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Address n'est créée que si Stripe a fourni une adresse de livraison au checkout
type Address struct {
	ID        gocql.UUID `json:"id"`
	UserID    string     `json:"user_id"`
	Street    string     `json:"street"`
	City      string     `json:"city"`
	State     string     `json:"state"`
	Country   string     `json:"country"`
	Zip       string     `json:"zip"`
	CreatedAt time.Time  `json:"created_at"`
}
