package handlers

import (
	"net/http"
	"os"

	"egwinch_back_end/internal/cart"
	"egwinch_back_end/internal/eventlog"
	"egwinch_back_end/internal/fulfillment"
	"egwinch_back_end/internal/gateway"
	"egwinch_back_end/internal/inventory"
	"egwinch_back_end/internal/orders"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	sessionName    = "egwinch_session"
	guestCartIDKey = "guest_cart_id"
)

// Dépendances partagées par tous les handlers, câblées au démarrage
var (
	cartStore    *cart.Store
	ledger       *inventory.Ledger
	eventLog     *eventlog.Log
	stripeGW     *gateway.StripeGateway
	orderRepo    *orders.Repository
	orchestrator *fulfillment.Orchestrator

	sessionStore *sessions.CookieStore
)

// Init câble les handlers sur leurs dépendances
func Init(store *cart.Store, l *inventory.Ledger, log *eventlog.Log,
	gw *gateway.StripeGateway, repo *orders.Repository, orch *fulfillment.Orchestrator) {

	cartStore = store
	ledger = l
	eventLog = log
	stripeGW = gw
	orderRepo = repo
	orchestrator = orch

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "super_secret"
	}
	sessionStore = sessions.NewCookieStore([]byte(secret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600, // même durée de vie que le panier Redis
		HttpOnly: true,
	}
}

// guestCartID lit l'identifiant du panier invité depuis le cookie de session
func guestCartID(c *gin.Context) string {
	session, err := sessionStore.Get(c.Request, sessionName)
	if err != nil {
		return ""
	}
	if id, ok := session.Values[guestCartIDKey].(string); ok {
		return id
	}
	return ""
}

// rememberGuestCartID persiste l'identifiant du panier invité dans le cookie
func rememberGuestCartID(c *gin.Context, id string) {
	session, _ := sessionStore.Get(c.Request, sessionName)
	session.Values[guestCartIDKey] = id
	session.Save(c.Request, c.Writer)
}

// forgetGuestCartID efface le cookie après fusion du panier invité
func forgetGuestCartID(c *gin.Context) {
	session, _ := sessionStore.Get(c.Request, sessionName)
	delete(session.Values, guestCartIDKey)
	session.Save(c.Request, c.Writer)
}

// cartHandle résout le panier courant : utilisateur connecté ou invité.
// Un panier invité est créé à la volée et mémorisé dans le cookie.
func cartHandle(c *gin.Context) cart.Handle {
	h := cartStore.Resolve(c.GetString("user_id"), guestCartID(c))
	if h.UserID == "" && h.GuestCartID != guestCartID(c) {
		rememberGuestCartID(c, h.GuestCartID)
	}
	return h
}

func requireUser(c *gin.Context) (string, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return "", false
	}
	return userID, true
}
