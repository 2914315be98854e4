package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// 💳 POST /api/checkout — crée une session Stripe Checkout pour le panier courant
//
func CreateCheckoutSession(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	items, err := cartStore.UserItems(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	s, err := stripeGW.CreateCheckoutSession(items, userID)
	if err != nil {
		log.Printf("❌ Erreur création session Checkout pour %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  s.ID,
		"url":         s.URL,
		"items_count": len(items),
	})
}
