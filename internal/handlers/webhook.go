package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	"egwinch_back_end/internal/fulfillment"
	"egwinch_back_end/internal/inventory"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"
)

//
// 📥 POST /api/webhook/stripe
//
// Stripe relivre tant qu'il ne reçoit pas de 2xx : le code de réponse pilote
// donc directement l'idempotence côté prestataire.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s (%s)", event.Type, event.ID)

	if event.Type != "checkout.session.completed" {
		// Acquitter pour que Stripe arrête de relivrer des événements qu'on ignore
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": string(event.Type)})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Println("❌ Erreur décodage CheckoutSession:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payload invalide"})
		return
	}

	result, err := orchestrator.CompleteCheckout(c.Request.Context(), event.ID, session.ID)
	if err != nil {
		handleFulfillmentError(c, event.ID, err)
		return
	}

	if result.Replayed {
		c.JSON(http.StatusOK, gin.H{"received": true, "replayed": true, "order_id": result.Summary.OrderID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "order_id": result.Summary.OrderID})
}

func handleFulfillmentError(c *gin.Context, eventID string, err error) {
	var stockErr *inventory.InsufficientStockError

	switch {
	case errors.Is(err, fulfillment.ErrEventInFlight):
		// Une autre livraison traite déjà l'événement : Stripe retentera et
		// tombera alors sur le résultat enregistré
		c.JSON(http.StatusConflict, gin.H{"error": "Événement en cours de traitement"})

	case errors.Is(err, fulfillment.ErrEmptyCart):
		// Panier vide : soit la commande est déjà passée (crash avant le marquage),
		// soit il n'y a rien à vendre. Dans les deux cas, relivrer ne changera rien.
		log.Printf("⚠️ Panier vide pour l'événement %s, acquitté", eventID)
		c.JSON(http.StatusOK, gin.H{"received": true, "ignored": "empty_cart"})

	case errors.Is(err, fulfillment.ErrInvalidPaymentMetadata):
		log.Printf("❌ Métadonnées invalides pour l'événement %s", eventID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Métadonnées de paiement invalides"})

	case errors.As(err, &stockErr):
		// Paiement encaissé mais stock épuisé : situation pour l'équipe support.
		// On renvoie 500 pour garder l'événement en relivraison le temps d'un
		// éventuel réassort.
		log.Printf("❌ Stock insuffisant pour l'événement %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Stock insuffisant",
			"product":   stockErr.Name,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})

	default:
		log.Printf("❌ Erreur traitement événement %s: %v", eventID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur traitement commande"})
	}
}

//
// 🔍 GET /api/admin/webhook-events/:id — diagnostic opérateur
//
func GetWebhookEvent(c *gin.Context) {
	record, err := eventLog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Événement introuvable"})
		return
	}
	c.JSON(http.StatusOK, record)
}
