package gateway

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"

	"egwinch_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"
)

// CustomerAddress est l'adresse de livraison telle que fournie par Stripe
type CustomerAddress struct {
	Street  string
	City    string
	State   string
	Country string
	Zip     string
}

// SessionDetail est la vue neutre d'une session de paiement : c'est la source
// de vérité pour l'acheteur et l'adresse, jamais pour les montants.
type SessionDetail struct {
	SessionID     string
	UserID        string
	Email         string
	PaymentMethod string
	Address       *CustomerAddress
}

// StripeGateway crée les sessions Stripe Checkout et les relit au webhook
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

// CreateCheckoutSession crée une session Stripe Checkout hébergée pour le panier.
// Les prix unitaires envoyés à Stripe sont remisés, mais seul le recalcul
// serveur au webhook fait foi pour le montant de la commande.
func (g *StripeGateway) CreateCheckoutSession(items []models.CartItem, userID string) (*stripe.CheckoutSession, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("panier vide")
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		unitAmount := int64(math.Round(item.UnitPrice() * 100))
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("eur"),
				UnitAmount: stripe.Int64(unitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	clientURL := os.Getenv("CLIENT_URL")
	if clientURL == "" {
		clientURL = "http://localhost:3000"
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(clientURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:          stripe.String(clientURL + "/cancel"),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}

	s, err := session.New(params)
	if err != nil {
		log.Printf("❌ Erreur création session Stripe: %v", err)
		return nil, err
	}

	log.Printf("💳 Session Checkout créée: %s pour %s", s.ID, userID)
	return s, nil
}

// RetrieveSession recharge la session complète depuis Stripe
func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*SessionDetail, error) {
	s, err := session.Get(sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("erreur récupération session %s: %v", sessionID, err)
	}

	detail := &SessionDetail{
		SessionID:     s.ID,
		UserID:        s.Metadata["user_id"],
		PaymentMethod: "card",
	}

	if len(s.PaymentMethodTypes) > 0 {
		detail.PaymentMethod = string(s.PaymentMethodTypes[0])
	}

	if s.CustomerDetails != nil {
		detail.Email = s.CustomerDetails.Email
		if addr := s.CustomerDetails.Address; addr != nil {
			detail.Address = &CustomerAddress{
				Street:  orNA(addr.Line1),
				City:    orNA(addr.City),
				State:   orNA(addr.State),
				Country: orNA(addr.Country),
				Zip:     orNA(addr.PostalCode),
			}
		}
	}

	return detail, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
