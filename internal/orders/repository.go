package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Repository écrit et lit les commandes dans le keyspace orders.
// L'écriture d'une commande complète passe par un batch loggé : le quadruplet
// Payment / Order(+items) / Shipment / TrackingDetail est appliqué en entier
// ou pas du tout.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// CreateFulfillment insère la commande et toutes ses dépendances en un seul batch
func (r *Repository) CreateFulfillment(ctx context.Context, order *models.Order,
	payment *models.Payment, shipment *models.Shipment, tracking *models.TrackingDetail) error {

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO orders (order_id, user_id, amount, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Amount, order.Status, order.CreatedAt)

	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, amount, status)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.CreatedAt, order.ID, order.Amount, order.Status)

	for _, item := range order.Items {
		productUUID, err := gocql.ParseUUID(item.ProductID)
		if err != nil {
			return fmt.Errorf("ID produit invalide dans la commande: %s", item.ProductID)
		}
		batch.Query(`INSERT INTO order_items (order_id, product_id, name, price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			order.ID, productUUID, item.Name, item.Price, item.Quantity)
	}

	batch.Query(`INSERT INTO payments (payment_id, order_id, user_id, method, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.OrderID, payment.UserID, payment.Method, payment.Amount, payment.CreatedAt)

	batch.Query(`INSERT INTO shipments (order_id, shipment_id, carrier, tracking_number, shipped_date, delivery_date, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		shipment.OrderID, shipment.ID, shipment.Carrier, shipment.TrackingNumber,
		shipment.ShippedDate, shipment.DeliveryDate, shipment.Status)

	batch.Query(`INSERT INTO tracking_details (order_id, status, updated_at)
		VALUES (?, ?, ?)`,
		tracking.OrderID, tracking.Status, tracking.UpdatedAt)

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("erreur insertion commande %s: %v", order.ID, err)
	}

	log.Printf("✅ Commande %s insérée (%d articles, %.2f€)", order.ID, len(order.Items), order.Amount)
	return nil
}

// CreateAddress enregistre l'adresse de livraison fournie par Stripe (keyspace users)
func (r *Repository) CreateAddress(ctx context.Context, addr *models.Address) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO addresses (address_id, user_id, street, city, state, country, zip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		addr.ID, addr.UserID, addr.Street, addr.City, addr.State, addr.Country, addr.Zip, addr.CreatedAt,
	).WithContext(ctx).Exec()
}

// ListByUser retourne les commandes d'un utilisateur, les plus récentes d'abord
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, created_at, amount, status FROM orders_by_user WHERE user_id = ?`,
		userID).WithContext(ctx).Iter()
	defer iter.Close()

	var orders []models.Order
	var o models.Order
	for iter.Scan(&o.ID, &o.CreatedAt, &o.Amount, &o.Status) {
		o.UserID = userID
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture commandes: %v", err)
	}
	return orders, nil
}

// GetByID retourne une commande et ses articles
func (r *Repository) GetByID(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	order := &models.Order{ID: orderID}
	err = session.Query(`SELECT user_id, amount, status, created_at FROM orders WHERE order_id = ?`,
		orderID).WithContext(ctx).Scan(&order.UserID, &order.Amount, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT product_id, name, price, quantity FROM order_items WHERE order_id = ?`,
		orderID).WithContext(ctx).Iter()
	defer iter.Close()

	var productID gocql.UUID
	var item models.OrderItem
	for iter.Scan(&productID, &item.Name, &item.Price, &item.Quantity) {
		item.OrderID = orderID
		item.ProductID = productID.String()
		order.Items = append(order.Items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("erreur lecture articles: %v", err)
	}

	return order, nil
}

// GetShipment retourne le snapshot d'expédition d'une commande
func (r *Repository) GetShipment(ctx context.Context, orderID gocql.UUID) (*models.Shipment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	s := &models.Shipment{OrderID: orderID}
	err = session.Query(`SELECT shipment_id, carrier, tracking_number, shipped_date, delivery_date, status
		FROM shipments WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&s.ID, &s.Carrier, &s.TrackingNumber, &s.ShippedDate, &s.DeliveryDate, &s.Status)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetTracking retourne le statut de livraison courant
func (r *Repository) GetTracking(ctx context.Context, orderID gocql.UUID) (*models.TrackingDetail, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	t := &models.TrackingDetail{OrderID: orderID}
	err = session.Query(`SELECT status, updated_at FROM tracking_details WHERE order_id = ?`,
		orderID).WithContext(ctx).Scan(&t.Status, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTrackingStatus met à jour le statut de livraison (seule entité mutable
// après la création de la commande)
func (r *Repository) UpdateTrackingStatus(ctx context.Context, orderID gocql.UUID, status string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query(`UPDATE tracking_details SET status = ?, updated_at = ? WHERE order_id = ?`,
		status, time.Now(), orderID).WithContext(ctx).Exec()
}
