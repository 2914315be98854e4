package handlers

import (
	"log"
	"net/http"

	"egwinch_back_end/internal/cache"
	"egwinch_back_end/internal/models"
	"egwinch_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

//
// 📦 GET /api/orders — commandes de l'utilisateur connecté
//
func GetMyOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := orderRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

//
// 📦 GET /api/orders/:id — une commande, ses articles, son expédition et son suivi
//
func GetOrderByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := orderRepo.GetByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	// Une commande n'est visible que par son propriétaire (ou un admin)
	if order.UserID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	response := gin.H{"order": order}

	if shipment, err := orderRepo.GetShipment(c.Request.Context(), orderID); err == nil {
		response["shipment"] = shipment
	}
	if tracking, err := orderRepo.GetTracking(c.Request.Context(), orderID); err == nil {
		response["tracking"] = tracking
	}

	c.JSON(http.StatusOK, response)
}

//
// 🚚 GET /api/orders/:id/tracking
//
func GetOrderTracking(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := orderRepo.GetByID(c.Request.Context(), orderID)
	if err != nil || (order.UserID != userID && c.GetString("role") != "admin") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	tracking, err := orderRepo.GetTracking(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Suivi introuvable"})
		return
	}

	c.JSON(http.StatusOK, tracking)
}

//
// 🚚 PUT /api/admin/orders/:id/tracking — seule mutation autorisée après création
//
func UpdateTrackingStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut requis"})
		return
	}

	switch input.Status {
	case models.ShipmentStatusPending, models.ShipmentStatusShipped, models.ShipmentStatusDelivered:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut inconnu: " + input.Status})
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := orderRepo.GetByID(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	if err := orderRepo.UpdateTrackingStatus(c.Request.Context(), orderID, input.Status); err != nil {
		log.Println("❌ Erreur mise à jour suivi:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour suivi"})
		return
	}

	// E-mail best-effort au client
	go func() {
		user, err := cache.GetUserFromCache(order.UserID)
		if err != nil || user.Email == "" {
			return
		}
		if err := utils.SendOrderStatusEmail(user.Email, orderID.String(), input.Status); err != nil {
			log.Printf("⚠️ Erreur envoi e-mail statut à %s: %v", user.Email, err)
		}
	}()

	log.Printf("🚚 Suivi commande %s → %s", orderID, input.Status)
	c.JSON(http.StatusOK, gin.H{"order_id": orderID.String(), "status": input.Status})
}

//
// 🧾 GET /api/orders/:id/invoice — facture PDF à la demande
//
func GetOrderInvoice(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := orderRepo.GetByID(c.Request.Context(), orderID)
	if err != nil || (order.UserID != userID && c.GetString("role") != "admin") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	pdf, err := utils.GenerateInvoicePDF(orderID.String(), order.Amount)
	if err != nil {
		log.Println("❌ Erreur génération facture:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=facture_"+orderID.String()[:8]+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}
