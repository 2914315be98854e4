package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	ShipmentStatusPending   = "PENDING"
	ShipmentStatusShipped   = "SHIPPED"
	ShipmentStatusDelivered = "DELIVERED"
)

// Order est immuable une fois créée : le montant est recalculé côté serveur
// au moment du paiement, jamais repris du client.
type Order struct {
	ID        gocql.UUID  `json:"id"`
	UserID    string      `json:"user_id"`
	Amount    float64     `json:"amount"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items"`
}

// OrderItem fige le produit et la quantité au moment de l'achat
type OrderItem struct {
	OrderID   gocql.UUID `json:"order_id"`
	ProductID string     `json:"product_id"`
	Name      string     `json:"name,omitempty"`
	Price     float64    `json:"price"` // prix unitaire remisé au moment de l'achat
	Quantity  int        `json:"quantity"`
}

type Payment struct {
	ID        gocql.UUID `json:"id"`
	OrderID   gocql.UUID `json:"order_id"`
	UserID    string     `json:"user_id"`
	Method    string     `json:"method"`
	Amount    float64    `json:"amount"`
	CreatedAt time.Time  `json:"created_at"`
}

// Shipment est le snapshot initial d'expédition créé avec la commande
type Shipment struct {
	ID             gocql.UUID `json:"id"`
	OrderID        gocql.UUID `json:"order_id"`
	Carrier        string     `json:"carrier"`
	TrackingNumber string     `json:"tracking_number"`
	ShippedDate    time.Time  `json:"shipped_date"`
	DeliveryDate   time.Time  `json:"delivery_date"`
	Status         string     `json:"status"`
}

// TrackingDetail porte le statut courant de livraison, mis à jour après coup
// (contrairement au Shipment qui reste le snapshot de départ)
type TrackingDetail struct {
	OrderID   gocql.UUID `json:"order_id"`
	Status    string     `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}
