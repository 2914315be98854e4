package fulfillment

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"egwinch_back_end/internal/eventlog"
	"egwinch_back_end/internal/gateway"
	"egwinch_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const checkoutCompletedEvent = "checkout.session.completed"

// deliveryLeadTime sépare la date d'expédition de l'estimation de livraison
const deliveryLeadTime = 7 * 24 * time.Hour

// --- Contrats des collaborateurs ---

type Gateway interface {
	RetrieveSession(ctx context.Context, sessionID string) (*gateway.SessionDetail, error)
}

type Carts interface {
	UserItems(ctx context.Context, userID string) ([]models.CartItem, error)
	ClearUser(ctx context.Context, userID string) error
}

type Inventory interface {
	Product(ctx context.Context, productID string) (*models.Product, error)
	Decrement(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error
	Restore(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error
}

type Events interface {
	Claim(ctx context.Context, eventID, eventType string) (bool, *eventlog.Record, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, result []byte) error
	Release(ctx context.Context, eventID string) error
}

type Orders interface {
	CreateFulfillment(ctx context.Context, order *models.Order, payment *models.Payment,
		shipment *models.Shipment, tracking *models.TrackingDetail) error
	CreateAddress(ctx context.Context, addr *models.Address) error
}

type Caches interface {
	InvalidateDashboard(ctx context.Context) error
}

// Notifier diffuse la commande après commit (e-mail, flux temps réel).
// Best-effort : un échec de notification n'annule jamais une commande payée.
type Notifier interface {
	OrderCompleted(result *Result, email string)
}

// --- Résultat ---

// Summary est le résumé persisté dans le journal d'événements pour répondre
// aux relivraisons sans refaire les effets de bord
type Summary struct {
	OrderID        string  `json:"order_id"`
	Amount         float64 `json:"amount"`
	TrackingNumber string  `json:"tracking_number"`
	Status         string  `json:"status"`
}

type Result struct {
	Order    *models.Order
	Payment  *models.Payment
	Shipment *models.Shipment
	Tracking *models.TrackingDetail
	Address  *models.Address
	Summary  Summary
	Replayed bool
}

// Orchestrator transforme un paiement confirmé en commande cohérente :
// paiement, commande, expédition, suivi, décrément de stock, purge du panier
// et invalidation des caches — ou rien du tout.
type Orchestrator struct {
	gateway   Gateway
	carts     Carts
	inventory Inventory
	events    Events
	orders    Orders
	caches    Caches
	notifier  Notifier
}

func NewOrchestrator(gw Gateway, carts Carts, inv Inventory, events Events,
	orders Orders, caches Caches, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		gateway:   gw,
		carts:     carts,
		inventory: inv,
		events:    events,
		orders:    orders,
		caches:    caches,
		notifier:  notifier,
	}
}

// CompleteCheckout traite un événement checkout.session.completed.
// Idempotent : pour un même eventID, une seule exécution produit des effets
// de bord ; les suivantes reçoivent le résultat enregistré.
func (o *Orchestrator) CompleteCheckout(ctx context.Context, eventID, sessionID string) (*Result, error) {
	// 1. Réservation atomique de l'événement — TOUJOURS en premier : sans
	// elle, chaque relivraison Stripe dupliquerait la commande.
	claimed, prior, err := o.events.Claim(ctx, eventID, checkoutCompletedEvent)
	if err != nil {
		return nil, err
	}
	if !claimed {
		if prior != nil && prior.Status == eventlog.StatusProcessed {
			result := &Result{Replayed: true}
			if err := json.Unmarshal([]byte(prior.Result), &result.Summary); err != nil {
				log.Printf("⚠️ Résumé illisible pour l'événement %s: %v", eventID, err)
			}
			log.Printf("🔁 Événement %s déjà traité, commande %s", eventID, result.Summary.OrderID)
			return result, nil
		}
		return nil, ErrEventInFlight
	}

	result, err := o.fulfill(ctx, eventID, sessionID)
	if err != nil {
		// Aucun effet durable n'est resté : on libère la réservation pour que
		// la relivraison du prestataire reste sûre.
		if releaseErr := o.events.Release(ctx, eventID); releaseErr != nil {
			log.Printf("⚠️ Erreur libération événement %s: %v", eventID, releaseErr)
		}
		return nil, err
	}

	return result, nil
}

func (o *Orchestrator) fulfill(ctx context.Context, eventID, sessionID string) (*Result, error) {
	// 2. Résoudre la session : Stripe est la source de vérité pour l'acheteur
	detail, err := o.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if detail.UserID == "" {
		return nil, ErrInvalidPaymentMetadata
	}
	userID := detail.UserID

	// 3. Recharger le panier : c'est ce snapshot-là qui fait foi, pas celui
	// qui existait à la création de la session
	cartItems, err := o.carts.UserItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	// 4. Recalculer le montant côté serveur depuis les produits frais ;
	// les totaux rapportés par le client ou la session ne font jamais foi
	orderID := gocql.TimeUUID()
	now := time.Now()

	orderItems := make([]models.OrderItem, 0, len(cartItems))
	var amount float64
	for _, item := range cartItems {
		product, err := o.inventory.Product(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice := product.DiscountedPrice()
		amount += unitPrice * float64(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			OrderID:   orderID,
			ProductID: item.ProductID,
			Name:      product.Name,
			Price:     unitPrice,
			Quantity:  item.Quantity,
		})
	}
	amount = roundCents(amount)

	// 5. Construire le quadruplet commande
	order := &models.Order{
		ID:        orderID,
		UserID:    userID,
		Amount:    amount,
		Status:    "paid",
		CreatedAt: now,
		Items:     orderItems,
	}

	payment := &models.Payment{
		ID:        gocql.TimeUUID(),
		OrderID:   orderID,
		UserID:    userID,
		Method:    detail.PaymentMethod,
		Amount:    amount,
		CreatedAt: now,
	}

	shipment := &models.Shipment{
		ID:             gocql.TimeUUID(),
		OrderID:        orderID,
		Carrier:        "Carrier_" + uuid.NewString()[:8],
		TrackingNumber: uuid.NewString(),
		ShippedDate:    now,
		DeliveryDate:   now.Add(deliveryLeadTime),
		Status:         models.ShipmentStatusPending,
	}

	tracking := &models.TrackingDetail{
		OrderID:   orderID,
		Status:    shipment.Status,
		UpdatedAt: now,
	}

	// 6. Décrémenter le stock article par article (CAS) ; tout échec rend le
	// stock déjà pris et ne laisse aucune commande derrière lui
	decremented := make([]models.CartItem, 0, len(cartItems))
	for _, item := range cartItems {
		if err := o.inventory.Decrement(ctx, item.ProductID, item.Quantity, &orderID); err != nil {
			o.restoreStock(ctx, decremented, &orderID)
			return nil, err
		}
		decremented = append(decremented, item)
	}

	// 7. Paiement + commande + expédition + suivi en un seul batch :
	// une commande sans expédition est une violation d'invariant
	if err := o.orders.CreateFulfillment(ctx, order, payment, shipment, tracking); err != nil {
		o.restoreStock(ctx, decremented, &orderID)
		return nil, err
	}

	// 8. Adresse de livraison, optionnelle : son absence n'est pas une erreur
	var address *models.Address
	if detail.Address != nil {
		address = &models.Address{
			ID:        gocql.TimeUUID(),
			UserID:    userID,
			Street:    detail.Address.Street,
			City:      detail.Address.City,
			State:     detail.Address.State,
			Country:   detail.Address.Country,
			Zip:       detail.Address.Zip,
			CreatedAt: now,
		}
		if err := o.orders.CreateAddress(ctx, address); err != nil {
			log.Printf("⚠️ Erreur enregistrement adresse pour %s: %v", userID, err)
			address = nil
		}
	}

	// 9. Purger le panier et invalider les agrégats du dashboard
	if err := o.carts.ClearUser(ctx, userID); err != nil {
		log.Printf("⚠️ Erreur vidage panier %s: %v", userID, err)
	}
	if err := o.caches.InvalidateDashboard(ctx); err != nil {
		log.Printf("⚠️ Erreur invalidation cache dashboard: %v", err)
	}

	result := &Result{
		Order:    order,
		Payment:  payment,
		Shipment: shipment,
		Tracking: tracking,
		Address:  address,
		Summary: Summary{
			OrderID:        orderID.String(),
			Amount:         amount,
			TrackingNumber: shipment.TrackingNumber,
			Status:         order.Status,
		},
	}

	// 10. Marquer l'événement traité avec le résumé pour les relivraisons
	summaryJSON, _ := json.Marshal(result.Summary)
	if err := o.events.MarkProcessed(ctx, eventID, checkoutCompletedEvent, summaryJSON); err != nil {
		// La commande est déjà commitée ; la réservation expirera mais une
		// relivraison butera sur le panier vide au lieu de dupliquer.
		log.Printf("⚠️ Erreur marquage événement %s: %v", eventID, err)
	}

	if o.notifier != nil {
		o.notifier.OrderCompleted(result, detail.Email)
	}

	log.Printf("✅ Commande %s créée pour %s (%.2f€, %d articles)",
		orderID, userID, amount, len(orderItems))
	return result, nil
}

// restoreStock compense les décréments déjà appliqués après un échec
func (o *Orchestrator) restoreStock(ctx context.Context, items []models.CartItem, orderID *gocql.UUID) {
	for _, item := range items {
		if err := o.inventory.Restore(ctx, item.ProductID, item.Quantity, orderID); err != nil {
			log.Printf("❌ Compensation stock échouée pour %s (+%d): %v",
				item.ProductID, item.Quantity, err)
		}
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
