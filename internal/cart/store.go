package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	userKeyPrefix  = "cart:user:"
	guestKeyPrefix = "cart:guest:"
	cartTTL        = 30 * 24 * time.Hour // 30 jours
)

// Handle identifie un panier : clé utilisateur OU clé invité, jamais les deux
type Handle struct {
	UserID      string
	GuestCartID string
}

func (h Handle) key() string {
	if h.UserID != "" {
		return userKeyPrefix + h.UserID
	}
	return guestKeyPrefix + h.GuestCartID
}

// Store gère la persistance des paniers dans Redis (blobs JSON, comme le reste du cache)
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// NewDefaultStore construit un Store sur le client Redis global
func NewDefaultStore() *Store {
	return &Store{rdb: database.Redis}
}

// Resolve retourne le handle du panier pour un utilisateur connecté ou un invité.
// Si aucun des deux identifiants n'est fourni, un panier invité est créé à la volée.
func (s *Store) Resolve(userID, guestCartID string) Handle {
	if userID != "" {
		return Handle{UserID: userID}
	}
	if guestCartID != "" {
		return Handle{GuestCartID: guestCartID}
	}
	return Handle{GuestCartID: uuid.NewString()}
}

// Items retourne les articles du panier (vide si le panier n'existe pas)
func (s *Store) Items(ctx context.Context, h Handle) ([]models.CartItem, error) {
	data, err := s.rdb.Get(ctx, h.key()).Result()
	if err == redis.Nil || data == "" {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("erreur décodage panier %s: %v", h.key(), err)
	}
	return items, nil
}

// Add ajoute un article ou incrémente sa quantité s'il est déjà présent
func (s *Store) Add(ctx context.Context, h Handle, item models.CartItem) ([]models.CartItem, error) {
	if item.Quantity < 1 {
		return nil, fmt.Errorf("quantité invalide: %d", item.Quantity)
	}

	items, err := s.Items(ctx, h)
	if err != nil {
		return nil, err
	}

	items = upsertItem(items, item)
	if err := s.save(ctx, h, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQuantity fixe la quantité d'un article ; une quantité ≤ 0 supprime l'article
func (s *Store) SetQuantity(ctx context.Context, h Handle, productID string, quantity int) ([]models.CartItem, error) {
	items, err := s.Items(ctx, h)
	if err != nil {
		return nil, err
	}

	items = setQuantity(items, productID, quantity)
	if err := s.save(ctx, h, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Remove retire un article du panier
func (s *Store) Remove(ctx context.Context, h Handle, productID string) ([]models.CartItem, error) {
	items, err := s.Items(ctx, h)
	if err != nil {
		return nil, err
	}

	items = removeItem(items, productID)
	if err := s.save(ctx, h, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UserItems retourne les articles du panier d'un utilisateur connecté
// (vue consommée par le tunnel de commande)
func (s *Store) UserItems(ctx context.Context, userID string) ([]models.CartItem, error) {
	return s.Items(ctx, Handle{UserID: userID})
}

// ClearUser vide le panier d'un utilisateur connecté
func (s *Store) ClearUser(ctx context.Context, userID string) error {
	return s.Clear(ctx, Handle{UserID: userID})
}

// Clear vide le panier. Vider un panier déjà vide est un no-op, pas une erreur.
func (s *Store) Clear(ctx context.Context, h Handle) error {
	if err := s.rdb.Del(ctx, h.key()).Err(); err != nil {
		return err
	}
	s.publish(ctx, h, "cleared")
	return nil
}

// MergeGuestCart fusionne le panier invité dans le panier de l'utilisateur
// (les quantités s'additionnent sur collision), puis supprime le panier invité.
// À appeler exactement une fois, à la connexion.
func (s *Store) MergeGuestCart(ctx context.Context, guestCartID, userID string) error {
	if guestCartID == "" || userID == "" {
		return nil
	}

	guest := Handle{GuestCartID: guestCartID}
	user := Handle{UserID: userID}

	guestItems, err := s.Items(ctx, guest)
	if err != nil {
		return err
	}
	if len(guestItems) == 0 {
		// Rien à fusionner, on supprime juste la trace du panier invité
		return s.rdb.Del(ctx, guest.key()).Err()
	}

	userItems, err := s.Items(ctx, user)
	if err != nil {
		return err
	}

	merged := mergeItems(userItems, guestItems)
	if err := s.save(ctx, user, merged); err != nil {
		return err
	}

	if err := s.rdb.Del(ctx, guest.key()).Err(); err != nil {
		return err
	}

	log.Printf("🔀 Panier invité %s fusionné dans le panier de %s (%d articles)",
		guestCartID, userID, len(merged))
	return nil
}

func (s *Store) save(ctx context.Context, h Handle, items []models.CartItem) error {
	if len(items) == 0 {
		if err := s.rdb.Del(ctx, h.key()).Err(); err != nil {
			return err
		}
		s.publish(ctx, h, "cleared")
		return nil
	}

	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, h.key(), data, cartTTL).Err(); err != nil {
		return err
	}
	s.publish(ctx, h, "updated")
	return nil
}

// publish notifie les websockets de synchronisation panier
func (s *Store) publish(ctx context.Context, h Handle, event string) {
	if h.UserID == "" {
		return
	}
	if err := s.rdb.Publish(ctx, userKeyPrefix+h.UserID, event).Err(); err != nil {
		log.Printf("⚠️ Erreur publication panier: %v", err)
	}
}

// --- Manipulation pure des listes d'articles ---

// upsertItem ajoute l'article ou additionne sa quantité à l'existant
func upsertItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// setQuantity fixe la quantité ; ≤ 0 supprime l'article (jamais de quantité zéro stockée)
func setQuantity(items []models.CartItem, productID string, quantity int) []models.CartItem {
	if quantity <= 0 {
		return removeItem(items, productID)
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return items
		}
	}
	return items
}

func removeItem(items []models.CartItem, productID string) []models.CartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	return out
}

// mergeItems additionne les quantités des articles partagés et concatène le reste
func mergeItems(dst, src []models.CartItem) []models.CartItem {
	for _, it := range src {
		dst = upsertItem(dst, it)
	}
	return dst
}
