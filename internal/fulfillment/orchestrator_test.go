package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"egwinch_back_end/internal/eventlog"
	"egwinch_back_end/internal/gateway"
	"egwinch_back_end/internal/inventory"
	"egwinch_back_end/internal/models"

	"github.com/gocql/gocql"
)

// --- Fakes en mémoire ---

type fakeGateway struct {
	detail *gateway.SessionDetail
	err    error
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, sessionID string) (*gateway.SessionDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

type fakeCarts struct {
	mu    sync.Mutex
	items map[string][]models.CartItem
}

func (f *fakeCarts) UserItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CartItem, len(f.items[userID]))
	copy(out, f.items[userID])
	return out, nil
}

func (f *fakeCarts) ClearUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, userID)
	return nil
}

type fakeInventory struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func (f *fakeInventory) Product(ctx context.Context, productID string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, fmt.Errorf("produit introuvable: %s", productID)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeInventory) Decrement(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("produit introuvable: %s", productID)
	}
	if p.Stock < quantity {
		return &inventory.InsufficientStockError{
			ProductID: productID,
			Name:      p.Name,
			Available: p.Stock,
			Requested: quantity,
		}
	}
	p.Stock -= quantity
	return nil
}

func (f *fakeInventory) Restore(ctx context.Context, productID string, quantity int, orderID *gocql.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("produit introuvable: %s", productID)
	}
	p.Stock += quantity
	return nil
}

func (f *fakeInventory) stock(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[productID].Stock
}

type fakeEvents struct {
	mu      sync.Mutex
	records map[string]*eventlog.Record
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{records: map[string]*eventlog.Record{}}
}

func (f *fakeEvents) Claim(ctx context.Context, eventID, eventType string) (bool, *eventlog.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[eventID]; ok {
		cp := *r
		return false, &cp, nil
	}
	f.records[eventID] = &eventlog.Record{
		EventID:   eventID,
		EventType: eventType,
		Status:    eventlog.StatusProcessing,
	}
	return true, nil, nil
}

func (f *fakeEvents) MarkProcessed(ctx context.Context, eventID, eventType string, result []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[eventID] = &eventlog.Record{
		EventID:   eventID,
		EventType: eventType,
		Status:    eventlog.StatusProcessed,
		Result:    string(result),
	}
	return nil
}

func (f *fakeEvents) Release(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, eventID)
	return nil
}

type fakeOrders struct {
	mu         sync.Mutex
	created    []*models.Order
	addresses  []*models.Address
	failCreate bool
}

func (f *fakeOrders) CreateFulfillment(ctx context.Context, order *models.Order, payment *models.Payment,
	shipment *models.Shipment, tracking *models.TrackingDetail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return errors.New("erreur stockage simulée")
	}
	f.created = append(f.created, order)
	return nil
}

func (f *fakeOrders) CreateAddress(ctx context.Context, addr *models.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses = append(f.addresses, addr)
	return nil
}

func (f *fakeOrders) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeCaches struct {
	mu          sync.Mutex
	invalidated int
}

func (f *fakeCaches) InvalidateDashboard(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

// --- Montage ---

type fixture struct {
	orch      *Orchestrator
	carts     *fakeCarts
	inventory *fakeInventory
	events    *fakeEvents
	orders    *fakeOrders
	caches    *fakeCaches
}

func newFixture(items []models.CartItem, products map[string]*models.Product) *fixture {
	f := &fixture{
		carts:     &fakeCarts{items: map[string][]models.CartItem{"user-1": items}},
		inventory: &fakeInventory{products: products},
		events:    newFakeEvents(),
		orders:    &fakeOrders{},
		caches:    &fakeCaches{},
	}
	gw := &fakeGateway{detail: &gateway.SessionDetail{
		SessionID:     "cs_test_1",
		UserID:        "user-1",
		Email:         "client@example.com",
		PaymentMethod: "card",
	}}
	f.orch = NewOrchestrator(gw, f.carts, f.inventory, f.events, f.orders, f.caches, nil)
	return f
}

func productA(stock int) map[string]*models.Product {
	return map[string]*models.Product{
		"11111111-1111-1111-1111-111111111111": {
			Name:     "Produit A",
			Price:    100,
			Discount: 10,
			Stock:    stock,
		},
	}
}

func cartWithA(qty int) []models.CartItem {
	return []models.CartItem{
		{ProductID: "11111111-1111-1111-1111-111111111111", Name: "Produit A", Price: 100, Discount: 10, Quantity: qty},
	}
}

// --- Tests ---

// Panier [A: prix 100, remise 10%, qty 2], stock(A)=5 → montant 180.00,
// stock(A)=3, panier vide, Shipment et TrackingDetail en PENDING.
func TestCompleteCheckout_HappyPath(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))

	result, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if result.Order.Amount != 180.00 {
		t.Errorf("Expected amount 180.00, got %.2f", result.Order.Amount)
	}
	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 3 {
		t.Errorf("Expected stock 3, got %d", got)
	}
	if items := f.carts.items["user-1"]; len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
	if result.Shipment.Status != models.ShipmentStatusPending {
		t.Errorf("Expected shipment PENDING, got %s", result.Shipment.Status)
	}
	if result.Tracking.Status != models.ShipmentStatusPending {
		t.Errorf("Expected tracking PENDING, got %s", result.Tracking.Status)
	}
	if result.Payment.Amount != result.Order.Amount {
		t.Errorf("Expected payment amount to match order, got %.2f vs %.2f",
			result.Payment.Amount, result.Order.Amount)
	}
	if f.orders.orderCount() != 1 {
		t.Errorf("Expected exactly 1 order, got %d", f.orders.orderCount())
	}
	if f.caches.invalidated != 1 {
		t.Errorf("Expected dashboard cache invalidated once, got %d", f.caches.invalidated)
	}
	if f.events.records["evt_1"].Status != eventlog.StatusProcessed {
		t.Errorf("Expected event marked processed, got %s", f.events.records["evt_1"].Status)
	}
}

// Même panier mais stock(A)=1 → InsufficientStock, aucune ligne créée,
// stock(A) inchangé.
func TestCompleteCheckout_InsufficientStock(t *testing.T) {
	f := newFixture(cartWithA(2), productA(1))

	_, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")

	var stockErr *inventory.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got: %v", err)
	}
	if stockErr.Name != "Produit A" {
		t.Errorf("Expected error to name the product, got %q", stockErr.Name)
	}
	if f.orders.orderCount() != 0 {
		t.Errorf("Expected no order, got %d", f.orders.orderCount())
	}
	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 1 {
		t.Errorf("Expected stock unchanged at 1, got %d", got)
	}
	// La réservation est libérée : l'événement reste traitable
	if _, ok := f.events.records["evt_1"]; ok {
		t.Error("Expected event claim released after failure")
	}
}

// Deux produits, le second en rupture : le décrément du premier est compensé
func TestCompleteCheckout_PartialDecrementIsRestored(t *testing.T) {
	products := productA(5)
	products["22222222-2222-2222-2222-222222222222"] = &models.Product{
		Name: "Produit B", Price: 50, Stock: 0,
	}
	items := append(cartWithA(2), models.CartItem{
		ProductID: "22222222-2222-2222-2222-222222222222", Name: "Produit B", Price: 50, Quantity: 1,
	})
	f := newFixture(items, products)

	_, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")

	var stockErr *inventory.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("Expected InsufficientStockError, got: %v", err)
	}
	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 5 {
		t.Errorf("Expected stock of A restored to 5, got %d", got)
	}
	if f.orders.orderCount() != 0 {
		t.Errorf("Expected no order, got %d", f.orders.orderCount())
	}
}

// Un échec du batch d'insertion rend le stock et laisse l'événement traitable
func TestCompleteCheckout_StorageFailureRestoresStock(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))
	f.orders.failCreate = true

	_, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err == nil {
		t.Fatal("Expected storage error")
	}

	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 5 {
		t.Errorf("Expected stock restored to 5, got %d", got)
	}
	if _, ok := f.events.records["evt_1"]; ok {
		t.Error("Expected event claim released after failure")
	}
}

// Une relivraison du même événement retourne le résultat enregistré sans
// réexécuter les effets de bord
func TestCompleteCheckout_DuplicateEventReplaysResult(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))

	first, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	second, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err != nil {
		t.Fatalf("Expected no error on replay, got: %v", err)
	}

	if !second.Replayed {
		t.Error("Expected replayed result")
	}
	if second.Summary.OrderID != first.Summary.OrderID {
		t.Errorf("Expected same order id, got %s vs %s",
			second.Summary.OrderID, first.Summary.OrderID)
	}
	if second.Summary.Amount != 180.00 {
		t.Errorf("Expected replayed amount 180.00, got %.2f", second.Summary.Amount)
	}
	if f.orders.orderCount() != 1 {
		t.Errorf("Expected exactly 1 order after replay, got %d", f.orders.orderCount())
	}
	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 3 {
		t.Errorf("Expected stock still 3 after replay, got %d", got)
	}
}

// N livraisons concurrentes du même événement : une seule produit les effets
// de bord, les autres voient le résultat enregistré ou "en cours"
func TestCompleteCheckout_ConcurrentDeliveries(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Result, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
		}(i)
	}
	wg.Wait()

	fullRuns := 0
	for i := 0; i < n; i++ {
		switch {
		case errs[i] == nil && results[i] != nil && !results[i].Replayed:
			fullRuns++
		case errs[i] == nil && results[i] != nil && results[i].Replayed:
			// résultat enregistré, pas d'effets de bord
		case errors.Is(errs[i], ErrEventInFlight):
			// livraison arrivée pendant le traitement
		default:
			t.Errorf("Unexpected outcome %d: result=%+v err=%v", i, results[i], errs[i])
		}
	}

	if fullRuns != 1 {
		t.Errorf("Expected exactly 1 full run, got %d", fullRuns)
	}
	if f.orders.orderCount() != 1 {
		t.Errorf("Expected exactly 1 order, got %d", f.orders.orderCount())
	}
	if got := f.inventory.stock("11111111-1111-1111-1111-111111111111"); got != 3 {
		t.Errorf("Expected stock 3, got %d", got)
	}
}

func TestCompleteCheckout_MissingUserIDInMetadata(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))
	f.orch.gateway = &fakeGateway{detail: &gateway.SessionDetail{SessionID: "cs_test_1"}}

	_, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if !errors.Is(err, ErrInvalidPaymentMetadata) {
		t.Fatalf("Expected ErrInvalidPaymentMetadata, got: %v", err)
	}
	if _, ok := f.events.records["evt_1"]; ok {
		t.Error("Expected event claim released")
	}
}

func TestCompleteCheckout_EmptyCart(t *testing.T) {
	f := newFixture(nil, productA(5))

	_, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Expected ErrEmptyCart, got: %v", err)
	}
	if _, ok := f.events.records["evt_1"]; ok {
		t.Error("Expected event claim released")
	}
}

// Les OrderItems figent le panier au moment du checkout : modifier le panier
// ensuite ne change pas la commande
func TestCompleteCheckout_OrderItemsSnapshotCart(t *testing.T) {
	f := newFixture(cartWithA(2), productA(5))

	result, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Le panier revit après coup (nouvel ajout), la commande ne bouge pas
	f.carts.items["user-1"] = cartWithA(9)

	if len(result.Order.Items) != 1 {
		t.Fatalf("Expected 1 order item, got %d", len(result.Order.Items))
	}
	if result.Order.Items[0].Quantity != 2 {
		t.Errorf("Expected snapshot quantity 2, got %d", result.Order.Items[0].Quantity)
	}
	if result.Order.Items[0].Price != 90.00 {
		t.Errorf("Expected discounted unit price 90.00, got %.2f", result.Order.Items[0].Price)
	}
}

// L'adresse n'est créée que si Stripe en a fourni une
func TestCompleteCheckout_AddressFromSession(t *testing.T) {
	f := newFixture(cartWithA(1), productA(5))
	f.orch.gateway = &fakeGateway{detail: &gateway.SessionDetail{
		SessionID:     "cs_test_1",
		UserID:        "user-1",
		PaymentMethod: "card",
		Address: &gateway.CustomerAddress{
			Street: "12 rue de la Paix", City: "Paris", Country: "FR", Zip: "75002", State: "N/A",
		},
	}}

	result, err := f.orch.CompleteCheckout(context.Background(), "evt_1", "cs_test_1")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if result.Address == nil {
		t.Fatal("Expected address to be created")
	}
	if result.Address.City != "Paris" {
		t.Errorf("Expected city Paris, got %s", result.Address.City)
	}
	if len(f.orders.addresses) != 1 {
		t.Errorf("Expected 1 stored address, got %d", len(f.orders.addresses))
	}
}

func TestRoundCents(t *testing.T) {
	// 19.99 × (1 − 15/100) × 3 = 50.9745 → 50.97
	if got := roundCents(19.99 * 0.85 * 3); got != 50.97 {
		t.Errorf("Expected 50.97, got %v", got)
	}
	if got := roundCents(180.0000001); got != 180.00 {
		t.Errorf("Expected 180.00, got %v", got)
	}
}
