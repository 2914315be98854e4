package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"egwinch_back_end/internal/cache"
	"egwinch_back_end/internal/cart"
	"egwinch_back_end/internal/config"
	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/eventlog"
	"egwinch_back_end/internal/fulfillment"
	"egwinch_back_end/internal/gateway"
	"egwinch_back_end/internal/handlers"
	"egwinch_back_end/internal/inventory"
	"egwinch_back_end/internal/notify"
	"egwinch_back_end/internal/orders"
	"egwinch_back_end/internal/routes"
	"egwinch_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth/gothic"
	"github.com/stripe/stripe-go/v83"
)

func main() {
	config.Load()

	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	if stripe.Key == "" {
		log.Fatal("❌ Impossible d'initialiser Stripe : clé manquante")
	}
	log.Println("✅ Stripe initialisé")

	database.ConnectDatabases()
	defer database.CloseScylla()

	// ✅ Initialiser les prepared statements pour améliorer les performances
	database.InitPreparedStatements()

	services.ConnectMinio()

	initGothic()
	handlers.InitProviders()

	// Câblage des dépendances du pipeline de commande
	cartStore := cart.NewDefaultStore()
	ledger := inventory.NewLedger()
	eventLog := eventlog.NewLog()
	stripeGW := gateway.NewStripeGateway()
	orderRepo := orders.NewRepository()
	invalidator := cache.NewDashboardInvalidator()
	notifier := notify.NewNotifier(database.Redis)

	orchestrator := fulfillment.NewOrchestrator(
		stripeGW, cartStore, ledger, eventLog, orderRepo, invalidator, notifier)

	handlers.Init(cartStore, ledger, eventLog, stripeGW, orderRepo, orchestrator)

	r := gin.Default()
	routes.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Egwinch lancé sur le port", port)
	r.Run(":" + port)
}

// initGothic configure le store de session et la résolution du provider
// pour le flux OAuth navigateur
func initGothic() {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("❌ SESSION_SECRET manquant dans .env")
	}

	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   false, // false en dev, true en prod
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	// gothic lit le provider depuis l'URL (:provider) via le query param
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		if provider := req.URL.Query().Get("provider"); provider != "" {
			return provider, nil
		}
		if provider := req.FormValue("provider"); provider != "" {
			return provider, nil
		}
		return "", errors.New("provider not found")
	}
}
