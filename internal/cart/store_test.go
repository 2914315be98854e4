package cart

import (
	"testing"

	"egwinch_back_end/internal/models"
)

func TestUpsertItem_NewProduct(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	items = upsertItem(items, models.CartItem{ProductID: "p2", Quantity: 1})

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[1].ProductID != "p2" || items[1].Quantity != 1 {
		t.Errorf("Expected p2 with quantity 1, got %+v", items[1])
	}
}

func TestUpsertItem_ExistingProductBumpsQuantity(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	items = upsertItem(items, models.CartItem{ProductID: "p1", Quantity: 3})

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("Expected quantity 5, got %d", items[0].Quantity)
	}
}

func TestSetQuantity_ZeroDeletesItem(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}

	items = setQuantity(items, "p1", 0)

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].ProductID != "p2" {
		t.Errorf("Expected p2 to remain, got %s", items[0].ProductID)
	}
}

func TestSetQuantity_NegativeDeletesItem(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	items = setQuantity(items, "p1", -3)

	if len(items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(items))
	}
}

func TestSetQuantity_UpdatesExisting(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	items = setQuantity(items, "p1", 7)

	if items[0].Quantity != 7 {
		t.Errorf("Expected quantity 7, got %d", items[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}

	items = removeItem(items, "p2")

	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	if items[0].ProductID != "p1" {
		t.Errorf("Expected p1 to remain, got %s", items[0].ProductID)
	}
}

func TestRemoveItem_AbsentProductIsNoop(t *testing.T) {
	items := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	items = removeItem(items, "p9")

	if len(items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(items))
	}
}

// Panier invité (2 articles) fusionné dans un panier utilisateur (1 article)
// partageant un produit : 2 articles distincts, quantités additionnées.
func TestMergeItems_SharedProductQuantitiesSummed(t *testing.T) {
	userItems := []models.CartItem{
		{ProductID: "p1", Quantity: 1},
	}
	guestItems := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 4},
	}

	merged := mergeItems(userItems, guestItems)

	if len(merged) != 2 {
		t.Fatalf("Expected 2 distinct items, got %d", len(merged))
	}

	byProduct := map[string]int{}
	for _, it := range merged {
		byProduct[it.ProductID] = it.Quantity
	}
	if byProduct["p1"] != 3 {
		t.Errorf("Expected p1 quantity 3, got %d", byProduct["p1"])
	}
	if byProduct["p2"] != 4 {
		t.Errorf("Expected p2 quantity 4, got %d", byProduct["p2"])
	}
}

func TestMergeItems_EmptyUserCart(t *testing.T) {
	guestItems := []models.CartItem{
		{ProductID: "p1", Quantity: 2},
	}

	merged := mergeItems(nil, guestItems)

	if len(merged) != 1 || merged[0].Quantity != 2 {
		t.Errorf("Expected guest items copied as-is, got %+v", merged)
	}
}

func TestResolve_PrefersAuthenticatedUser(t *testing.T) {
	s := NewStore(nil)

	h := s.Resolve("user-1", "guest-1")

	if h.UserID != "user-1" || h.GuestCartID != "" {
		t.Errorf("Expected user handle, got %+v", h)
	}
}

func TestResolve_GuestWithoutCartGetsNewID(t *testing.T) {
	s := NewStore(nil)

	h := s.Resolve("", "")

	if h.GuestCartID == "" {
		t.Error("Expected a generated guest cart id")
	}
	if h.UserID != "" {
		t.Errorf("Expected no user id, got %s", h.UserID)
	}
}
