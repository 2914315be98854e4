package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"egwinch_back_end/internal/cache"
	"egwinch_back_end/internal/database"
	"egwinch_back_end/internal/models"
	"egwinch_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

// injectProvider recopie le paramètre d'URL :provider dans la query string,
// là où gothic.GetProviderName le lit
func injectProvider(c *gin.Context, provider string) {
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
}

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	userID := uuid.NewString()

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Unicité de l'email via transaction légère : pas de fenêtre entre la
	// vérification et l'insertion
	existing := map[string]interface{}{}
	applied, err := session.Query(
		`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, userID,
	).WithContext(c.Request.Context()).MapScanCAS(existing)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Un compte avec cet email existe déjà",
			"email": email,
		})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur hash mot de passe"})
		return
	}

	now := time.Now()
	err = database.GetPreparedInsertUser().
		Bind(userID, email, hashedPassword, input.Name, "customer", "local", "", now, now).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		// Rollback de la réservation d'email pour ne pas bloquer l'adresse
		session.Query(`DELETE FROM users_by_email WHERE email = ?`, email).Exec()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	go func() {
		if err := utils.SendWelcomeEmail(email, input.Name); err != nil {
			log.Printf("⚠️ Erreur envoi e-mail de bienvenue à %s: %v", email, err)
		}
	}()

	c.JSON(http.StatusCreated, gin.H{
		"id":    userID,
		"email": email,
		"role":  "customer",
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := findUserByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	mergeGuestCartAtSignIn(c, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"role":   user.Role,
	})
}

func Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, user)
}

//
// ✏️ PUT /api/me — mise à jour du profil
//
func UpdateMe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom requis"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	err = session.Query(`UPDATE users SET name = ?, updated_at = ? WHERE user_id = ?`,
		input.Name, time.Now(), userID).
		WithContext(c.Request.Context()).Exec()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	cache.InvalidateUserCache(userID)

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "name": input.Name})
}

// ================== AUTH SOCIALE ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	injectProvider(c, provider)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	injectProvider(c, provider)

	userInfo, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	email := strings.ToLower(userInfo.Email)
	user, findErr := findUserByEmail(c.Request.Context(), email)
	if findErr != nil {
		// Création d'un nouvel utilisateur social
		user = &models.User{
			ID:         uuid.NewString(),
			Email:      email,
			Name:       userInfo.Name,
			Role:       "customer",
			Provider:   provider,
			ProviderID: userInfo.UserID,
		}

		now := time.Now()
		if err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
			email, user.ID).WithContext(c.Request.Context()).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement utilisateur"})
			return
		}
		if err := database.GetPreparedInsertUser().
			Bind(user.ID, email, "", user.Name, user.Role, provider, userInfo.UserID, now, now).
			WithContext(c.Request.Context()).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement utilisateur"})
			return
		}
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	mergeGuestCartAtSignIn(c, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"provider": provider,
		"email":    user.Email,
		"name":     user.Name,
		"role":     user.Role,
	})
}

// ================== UTILITAIRES ==================

// mergeGuestCartAtSignIn fusionne le panier invité dans le panier de
// l'utilisateur puis oublie le cookie. Appelée exactement une fois par connexion.
func mergeGuestCartAtSignIn(c *gin.Context, userID string) {
	guestID := guestCartID(c)
	if guestID == "" {
		return
	}
	if err := cartStore.MergeGuestCart(c.Request.Context(), guestID, userID); err != nil {
		log.Printf("⚠️ Erreur fusion panier invité %s → %s: %v", guestID, userID, err)
		return
	}
	forgetGuestCartID(c)
}

func findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var userID string
	if err := database.GetPreparedGetUserByEmail().Bind(email).WithContext(ctx).Scan(&userID); err != nil {
		return nil, err
	}

	user := &models.User{ID: userID}
	err := database.GetPreparedGetUserByID().Bind(userID).WithContext(ctx).
		Scan(&user.Email, &user.Password, &user.Name, &user.Role, &user.Provider, &user.ProviderID)
	if err != nil {
		return nil, err
	}
	return user, nil
}
