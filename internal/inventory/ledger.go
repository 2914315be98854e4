package inventory

import (
	"context"
	"fmt"
	"log"
	"time"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Nombre de tentatives CAS avant d'abandonner un décrément sous forte contention
const maxCASRetries = 10

// InsufficientStockError est renvoyée quand un décrément ferait passer le stock
// sous zéro. Le stock est rejeté, jamais tronqué.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuffisant pour %s (%s): %d demandé, %d disponible",
		e.Name, e.ProductID, e.Requested, e.Available)
}

// Ledger encapsule l'accès au stock produit dans ScyllaDB. Le couple
// lecture/condition passe par une transaction légère (IF stock = ?) pour que
// deux décréments concurrents sur le même produit ne puissent pas écraser
// la même valeur lue.
type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Product recharge le produit (nom, prix, remise, stock) depuis la base
func (l *Ledger) Product(ctx context.Context, productID string) (*models.Product, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, fmt.Errorf("ID produit invalide: %s", productID)
	}

	p := &models.Product{ID: gocql.UUID(pid)}
	err = database.GetPreparedGetProductForOrder().Bind(gocql.UUID(pid)).
		WithContext(ctx).Scan(&p.Name, &p.Price, &p.Discount, &p.Stock)
	if err != nil {
		return nil, fmt.Errorf("produit introuvable: %s", productID)
	}
	return p, nil
}

// Decrement retire quantity unités du stock du produit. Boucle CAS : on lit le
// stock courant puis on écrit conditionnellement (IF stock = valeur lue) ; si
// un autre décrément est passé entre-temps, on recommence avec la valeur fraîche.
func (l *Ledger) Decrement(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("ID produit invalide: %s", productID)
	}
	productUUID := gocql.UUID(pid)

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var stock int
		var name string
		err := session.Query(`SELECT stock, name FROM products WHERE product_id = ?`, productUUID).
			WithContext(ctx).Scan(&stock, &name)
		if err != nil {
			return fmt.Errorf("produit introuvable: %s", productID)
		}

		if stock < quantity {
			return &InsufficientStockError{
				ProductID: productID,
				Name:      name,
				Available: stock,
				Requested: quantity,
			}
		}

		newStock := stock - quantity
		var current int
		applied, err := session.Query(
			`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?`,
			newStock, time.Now(), productUUID, stock,
		).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return fmt.Errorf("erreur mise à jour stock %s: %v", productID, err)
		}

		if applied {
			l.recordMovement(session, productUUID, "sale", quantity, stock, newStock, orderID)
			return nil
		}
		// Perdu la course : current porte le stock écrit par l'autre décrément
	}

	return fmt.Errorf("conflit de stock persistant pour %s", productID)
}

// Restore remet quantity unités en stock (compensation d'un échec aval)
func (l *Ledger) Restore(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("ID produit invalide: %s", productID)
	}
	productUUID := gocql.UUID(pid)

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var stock int
		err := session.Query(`SELECT stock FROM products WHERE product_id = ?`, productUUID).
			WithContext(ctx).Scan(&stock)
		if err != nil {
			return fmt.Errorf("produit introuvable: %s", productID)
		}

		newStock := stock + quantity
		var current int
		applied, err := session.Query(
			`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?`,
			newStock, time.Now(), productUUID, stock,
		).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return fmt.Errorf("erreur restauration stock %s: %v", productID, err)
		}

		if applied {
			l.recordMovement(session, productUUID, "return", quantity, stock, newStock, orderID)
			return nil
		}
	}

	return fmt.Errorf("conflit de stock persistant pour %s", productID)
}

// Adjust fixe le stock à une valeur absolue (restock ou correction d'inventaire)
// et lève une alerte si le nouveau stock passe sous le seuil du produit
func (l *Ledger) Adjust(ctx context.Context, productID string, newStock int, reason string) error {
	if newStock < 0 {
		return fmt.Errorf("stock négatif interdit: %d", newStock)
	}

	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("ID produit invalide: %s", productID)
	}
	productUUID := gocql.UUID(pid)

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		var stock, threshold int
		var name string
		err := session.Query(`SELECT stock, low_stock_threshold, name FROM products WHERE product_id = ?`,
			productUUID).WithContext(ctx).Scan(&stock, &threshold, &name)
		if err != nil {
			return fmt.Errorf("produit introuvable: %s", productID)
		}

		var current int
		applied, err := session.Query(
			`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?`,
			newStock, time.Now(), productUUID, stock,
		).WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return fmt.Errorf("erreur ajustement stock %s: %v", productID, err)
		}

		if applied {
			movementType := "restock"
			if newStock < stock {
				movementType = "adjustment"
			}
			l.recordMovementWithReason(session, productUUID, movementType, abs(newStock-stock), stock, newStock, nil, reason)
			l.maybeAlert(session, productUUID, name, newStock, threshold)
			return nil
		}
	}

	return fmt.Errorf("conflit de stock persistant pour %s", productID)
}

// maybeAlert crée une alerte de stock bas ou de rupture (best-effort)
func (l *Ledger) maybeAlert(session *gocql.Session, productID gocql.UUID, name string, stock, threshold int) {
	if threshold <= 0 || stock > threshold {
		return
	}

	alertType := "low_stock"
	if stock == 0 {
		alertType = "out_of_stock"
	}

	alert := models.StockAlert{
		ID:             gocql.TimeUUID(),
		ProductID:      productID,
		ProductName:    name,
		CurrentStock:   stock,
		ThresholdStock: threshold,
		AlertType:      alertType,
		CreatedAt:      time.Now(),
	}

	err := session.Query(`
		INSERT INTO stock_alerts (id, product_id, product_name, current_stock, threshold_stock, alert_type, is_resolved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, false, ?)`,
		alert.ID, alert.ProductID, alert.ProductName, alert.CurrentStock,
		alert.ThresholdStock, alert.AlertType, alert.CreatedAt,
	).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur création alerte stock pour %s: %v", name, err)
	} else {
		log.Printf("🚨 Alerte stock %s: %s (%d restants)", alertType, name, stock)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// recordMovement trace le mouvement de stock (best-effort, n'interrompt jamais la vente)
func (l *Ledger) recordMovement(session *gocql.Session, productID gocql.UUID, movementType string,
	quantity, prevStock, newStock int, orderID *gocql.UUID) {
	l.recordMovementWithReason(session, productID, movementType, quantity, prevStock, newStock, orderID, "")
}

func (l *Ledger) recordMovementWithReason(session *gocql.Session, productID gocql.UUID, movementType string,
	quantity, prevStock, newStock int, orderID *gocql.UUID, reason string) {

	movement := models.StockMovement{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Type:      movementType,
		Quantity:  quantity,
		PrevStock: prevStock,
		NewStock:  newStock,
		Reason:    reason,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}

	err := session.Query(`
		INSERT INTO stock_movements (id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID, movement.ProductID, movement.Type, movement.Quantity,
		movement.PrevStock, movement.NewStock, movement.Reason, movement.OrderID, movement.CreatedAt,
	).Exec()
	if err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}
}
