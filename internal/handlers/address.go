package handlers

import (
	"log"
	"net/http"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

//
// 🏠 GET /api/addresses — adresses de livraison capturées au checkout
//
func GetMyAddresses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT address_id, street, city, state, country, zip, created_at
		FROM addresses WHERE user_id = ?`, userID).
		WithContext(c.Request.Context()).Iter()

	var addresses []models.Address
	a := models.Address{UserID: userID}
	for iter.Scan(&a.ID, &a.Street, &a.City, &a.State, &a.Country, &a.Zip, &a.CreatedAt) {
		addresses = append(addresses, a)
		a = models.Address{UserID: userID}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture adresses:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses, "count": len(addresses)})
}
