package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes chaudes du tunnel de commande
	stmtGetUserByEmail     *gocql.Query
	stmtGetUserByID        *gocql.Query
	stmtInsertUser         *gocql.Query
	stmtGetProductForCart  *gocql.Query
	stmtGetProductForOrder *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (users): %v", err)
			return
		}

		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, provider_id
			FROM users WHERE user_id = ?`)

		// L'insertion dans users_by_email n'est pas préparée ici : elle passe
		// par un INSERT ... IF NOT EXISTS (unicité de l'email)
		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		productsSession, err := GetProductsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements (products): %v", err)
			return
		}

		// Lecture produit côté panier (ajout au panier)
		stmtGetProductForCart = productsSession.Query(`SELECT name, price, discount, stock, image_urls
			FROM products WHERE product_id = ?`)

		// Lecture produit côté commande (recalcul du montant au webhook)
		stmtGetProductForOrder = productsSession.Query(`SELECT name, price, discount, stock
			FROM products WHERE product_id = ?`)

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedGetProductForCart() *gocql.Query {
	return stmtGetProductForCart
}

func GetPreparedGetProductForOrder() *gocql.Query {
	return stmtGetProductForOrder
}
