package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"egwinch_back_end/internal/cache"
	"egwinch_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

//
// 📊 GET /api/admin/dashboard/stats?year=2026
//
// Les agrégats sont coûteux (scan des commandes) : ils sont servis depuis le
// cache Redis et invalidés à chaque nouvelle commande.
func GetDashboardStats(c *gin.Context) {
	year := c.DefaultQuery("year", "all")

	if data, ok := cache.GetDashboardStats(c.Request.Context(), year); ok {
		c.Data(http.StatusOK, "application/json", []byte(data))
		return
	}

	stats, err := computeDashboardStats(year)
	if err != nil {
		log.Println("❌ Erreur calcul stats:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}

	payload, _ := json.Marshal(stats)
	cache.SetDashboardStats(c.Request.Context(), year, string(payload))

	c.Data(http.StatusOK, "application/json", payload)
}

//
// 📊 GET /api/admin/dashboard/year-range
//
func GetDashboardYearRange(c *gin.Context) {
	if data, ok := cache.GetYearRange(c.Request.Context()); ok {
		c.Data(http.StatusOK, "application/json", []byte(data))
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	minYear, maxYear := 0, 0
	iter := session.Query("SELECT created_at FROM orders").Iter()
	var createdAt time.Time
	for iter.Scan(&createdAt) {
		y := createdAt.Year()
		if minYear == 0 || y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture années: %v", err)
	}

	if minYear == 0 {
		minYear = time.Now().Year()
		maxYear = minYear
	}

	payload, _ := json.Marshal(gin.H{"min_year": minYear, "max_year": maxYear})
	cache.SetYearRange(c.Request.Context(), string(payload))

	c.Data(http.StatusOK, "application/json", payload)
}

func computeDashboardStats(year string) (gin.H, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var totalOrders int
	var totalRevenue float64
	statusCount := make(map[string]int)
	monthlyRevenue := make(map[string]float64)

	iter := session.Query("SELECT status, amount, created_at FROM orders").Iter()
	var status string
	var amount float64
	var createdAt time.Time

	for iter.Scan(&status, &amount, &createdAt) {
		if year != "all" && createdAt.Format("2006") != year {
			continue
		}
		totalOrders++
		totalRevenue += amount
		statusCount[status]++
		monthlyRevenue[createdAt.Format("2006-01")] += amount
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	var averageOrderValue float64
	if totalOrders > 0 {
		averageOrderValue = totalRevenue / float64(totalOrders)
	}

	// Stocks (indépendant de l'année)
	productsSession, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var totalProducts, lowStockProducts, outOfStockProducts int
	prodIter := productsSession.Query("SELECT stock, low_stock_threshold FROM products").Iter()
	var stock, threshold int
	for prodIter.Scan(&stock, &threshold) {
		totalProducts++
		if stock == 0 {
			outOfStockProducts++
		} else if threshold > 0 && stock <= threshold {
			lowStockProducts++
		}
	}
	if err := prodIter.Close(); err != nil {
		log.Printf("❌ Erreur lecture produits: %v", err)
	}

	return gin.H{
		"year": year,
		"orders": gin.H{
			"total":               totalOrders,
			"total_revenue":       totalRevenue,
			"average_order_value": averageOrderValue,
			"by_status":           statusCount,
			"monthly_revenue":     monthlyRevenue,
		},
		"products": gin.H{
			"total":        totalProducts,
			"low_stock":    lowStockProducts,
			"out_of_stock": outOfStockProducts,
		},
		"generated_at": time.Now(),
	}, nil
}
