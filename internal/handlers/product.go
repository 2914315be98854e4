package handlers

import (
	"log"
	"net/http"
	"time"

	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"
	"egwinch_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

//
// 🛍️ GET /api/products
//
func ListProducts(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, description, price, discount, stock, low_stock_threshold,
		sku, category_id, image_urls, tags, is_active, created_at, updated_at FROM products`).
		WithContext(c.Request.Context()).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Discount, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt) {
		if p.IsActive {
			products = append(products, p)
		}
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture produits:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

//
// 🛍️ GET /api/products/:id
//
func GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p := models.Product{ID: gocql.UUID(productID)}
	err = session.Query(`SELECT name, description, price, discount, stock, low_stock_threshold,
		sku, category_id, image_urls, tags, is_active, created_at, updated_at
		FROM products WHERE product_id = ?`, gocql.UUID(productID)).
		WithContext(c.Request.Context()).
		Scan(&p.Name, &p.Description, &p.Price, &p.Discount, &p.Stock, &p.LowStockThreshold,
			&p.SKU, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, p)
}

//
// 🔍 GET /api/products/search?q=...
//
func SearchProductsHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	results, err := services.SearchProducts(query)
	if err != nil {
		log.Println("❌ Erreur recherche Elastic:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

//
// 🛠️ POST /api/admin/products
//
func CreateProduct(c *gin.Context) {
	var input struct {
		Name              string   `json:"name" binding:"required"`
		Description       string   `json:"description"`
		Price             float64  `json:"price" binding:"required"`
		Discount          float64  `json:"discount"`
		Stock             int      `json:"stock"`
		LowStockThreshold int      `json:"low_stock_threshold"`
		SKU               string   `json:"sku"`
		CategoryID        string   `json:"category_id"`
		ImageURLs         []string `json:"image_urls"`
		Tags              []string `json:"tags"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if input.Price <= 0 || input.Discount < 0 || input.Discount > 100 || input.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prix, remise ou stock invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var categoryID gocql.UUID
	if input.CategoryID != "" {
		cid, err := gocql.ParseUUID(input.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID catégorie invalide"})
			return
		}
		categoryID = cid
	}

	now := time.Now()
	product := models.Product{
		ID:                gocql.TimeUUID(),
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		Discount:          input.Discount,
		Stock:             input.Stock,
		LowStockThreshold: input.LowStockThreshold,
		SKU:               input.SKU,
		CategoryID:        categoryID,
		ImageURLs:         input.ImageURLs,
		Tags:              input.Tags,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err = session.Query(`INSERT INTO products (product_id, name, description, price, discount, stock,
		low_stock_threshold, sku, category_id, image_urls, tags, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.Description, product.Price, product.Discount, product.Stock,
		product.LowStockThreshold, product.SKU, product.CategoryID, product.ImageURLs, product.Tags,
		product.IsActive, product.CreatedAt, product.UpdatedAt,
	).WithContext(c.Request.Context()).Exec()
	if err != nil {
		log.Println("❌ Erreur insertion produit:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	go services.IndexProduct(product)

	c.JSON(http.StatusCreated, product)
}

//
// 🛠️ DELETE /api/admin/products/:id — désactivation (jamais de suppression physique :
// les commandes passées référencent le produit)
//
func DeactivateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`UPDATE products SET is_active = false, updated_at = ? WHERE product_id = ?`,
		time.Now(), gocql.UUID(productID)).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur désactivation produit"})
		return
	}

	go services.RemoveProductFromIndex(productID.String())

	c.JSON(http.StatusOK, gin.H{"product_id": productID.String(), "is_active": false})
}

//
// 🛠️ PUT /api/admin/products/:id/stock — réassort ou correction d'inventaire
//
func UpdateStock(c *gin.Context) {
	var input struct {
		Stock  int    `json:"stock"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	productID := c.Param("id")
	if err := ledger.Adjust(c.Request.Context(), productID, input.Stock, input.Reason); err != nil {
		log.Println("❌ Erreur ajustement stock:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajustement stock"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID, "stock": input.Stock})
}

//
// 📈 GET /api/admin/products/:id/movements — historique des mouvements de stock
//
func GetStockMovements(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT id, type, quantity, prev_stock, new_stock, reason, order_id, created_at
		FROM stock_movements WHERE product_id = ?`, gocql.UUID(productID)).
		WithContext(c.Request.Context()).Iter()

	var movements []models.StockMovement
	m := models.StockMovement{ProductID: gocql.UUID(productID)}
	for iter.Scan(&m.ID, &m.Type, &m.Quantity, &m.PrevStock, &m.NewStock, &m.Reason, &m.OrderID, &m.CreatedAt) {
		movements = append(movements, m)
		m = models.StockMovement{ProductID: gocql.UUID(productID)}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture mouvements:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture mouvements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements, "count": len(movements)})
}

//
// 🚨 GET /api/admin/stock-alerts
//
func GetStockAlerts(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT id, product_id, product_name, current_stock, threshold_stock,
		alert_type, is_resolved, created_at FROM stock_alerts`).
		WithContext(c.Request.Context()).Iter()

	var alerts []models.StockAlert
	var a models.StockAlert
	for iter.Scan(&a.ID, &a.ProductID, &a.ProductName, &a.CurrentStock, &a.ThresholdStock,
		&a.AlertType, &a.IsResolved, &a.CreatedAt) {
		if !a.IsResolved {
			alerts = append(alerts, a)
		}
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur lecture alertes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture alertes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "count": len(alerts)})
}

//
// 🖼️ POST /api/admin/products/:id/image — upload MinIO puis rattachement au produit
//
func UploadProductImage(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier image requis"})
		return
	}

	url, err := services.UploadImage(file)
	if err != nil {
		log.Println("❌ Erreur upload MinIO:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`UPDATE products SET image_urls = image_urls + ?, updated_at = ? WHERE product_id = ?`,
		[]string{url}, time.Now(), gocql.UUID(productID)).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur rattachement image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

//
// 🔗 GET /api/products/:id/image-url?path=... — URL signée temporaire
//
func GetSignedImageURL(c *gin.Context) {
	objectPath := c.Query("path")
	if objectPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre path requis"})
		return
	}

	url, err := services.GenerateSignedURL(c.Request.Context(), objectPath, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
