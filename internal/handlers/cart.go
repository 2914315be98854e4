package handlers

import (
	"net/http"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

//
// 🛒 GET /api/cart
//
func GetCart(c *gin.Context) {
	h := cartHandle(c)

	items, err := cartStore.Items(c.Request.Context(), h)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": cartTotal(items)})
}

//
// 🟢 POST /api/cart/add
//
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	// 🧩 Le prix affiché dans le panier vient de la base, jamais du client
	var name string
	var price, discount float64
	var stock int
	var imageURLs []string
	err = database.GetPreparedGetProductForCart().Bind(gocql.UUID(productID)).
		Scan(&name, &price, &discount, &stock, &imageURLs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	item := models.CartItem{
		ProductID: input.ProductID,
		Name:      name,
		Price:     price,
		Discount:  discount,
		Quantity:  input.Quantity,
		ImageURL:  imageURL,
	}

	h := cartHandle(c)
	items, err := cartStore.Add(c.Request.Context(), h, item)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur sauvegarde panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit ajouté au panier",
		"items":   items,
		"total":   cartTotal(items),
	})
}

//
// 🔁 PUT /api/cart/:productId
//
func UpdateCartQuantity(c *gin.Context) {
	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	h := cartHandle(c)
	items, err := cartStore.SetQuantity(c.Request.Context(), h, c.Param("productId"), input.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": cartTotal(items)})
}

//
// ❌ DELETE /api/cart/:productId
//
func RemoveFromCart(c *gin.Context) {
	h := cartHandle(c)

	items, err := cartStore.Remove(c.Request.Context(), h, c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit supprimé du panier",
		"items":   items,
		"total":   cartTotal(items),
	})
}

//
// 🧹 DELETE /api/cart/clear
//
func ClearCart(c *gin.Context) {
	h := cartHandle(c)

	if err := cartStore.Clear(c.Request.Context(), h); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors du vidage du panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}

// cartTotal calcule le total affiché (prix remisés) ; le montant facturé est
// recalculé indépendamment au webhook
func cartTotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.UnitPrice() * float64(item.Quantity)
	}
	return total
}
