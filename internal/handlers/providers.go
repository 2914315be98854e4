package handlers

import (
	"net/http"
	"os"

	"egwinch_back_end/internal/auth"
	"egwinch_back_end/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

// Providers expose le flux OAuth "manuel" (x/oauth2) pour les clients mobiles
// qui ne passent pas par la redirection gothic
var Providers = map[string]*auth.OAuthProvider{}

func InitProviders() {
	// Flux navigateur : gothic
	goth.UseProviders(
		google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			os.Getenv("GOOGLE_REDIRECT_URL"),
			"email", "profile",
		),
	)

	// Flux mobile : échange de code direct
	Providers["google"] = &auth.OAuthProvider{
		Name:   "google",
		Config: config.GoogleOAuthConfig,
	}
}

//
// 🔗 GET /api/auth/:provider/url — URL d'autorisation pour les clients mobiles
//
func GetOAuthURL(c *gin.Context) {
	provider, ok := Providers[c.Param("provider")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider inconnu"})
		return
	}

	state := uuid.NewString()
	c.JSON(http.StatusOK, gin.H{
		"url":   provider.GetAuthURL(state),
		"state": state,
	})
}

//
// 🔁 POST /api/auth/:provider/exchange — échange du code d'autorisation (mobile)
//
func ExchangeOAuthCode(c *gin.Context) {
	provider, ok := Providers[c.Param("provider")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider inconnu"})
		return
	}

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	token, err := provider.Exchange(input.Code)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Échange de code échoué"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token.AccessToken,
		"expiry":       token.Expiry,
	})
}
