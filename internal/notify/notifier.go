package notify

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"egwinch_back_end/internal/fulfillment"
	"egwinch_back_end/internal/utils"

	"github.com/redis/go-redis/v9"
)

// OrdersFeedChannel est le canal Redis relayé aux websockets du back-office
const OrdersFeedChannel = "orders:feed"

// Notifier diffuse les commandes finalisées : e-mail de confirmation avec
// facture PDF, et publication sur le flux temps réel. Tout est best-effort,
// la commande est déjà commitée quand on arrive ici.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

func (n *Notifier) OrderCompleted(result *fulfillment.Result, email string) {
	go n.publishFeed(result)

	if email == "" || email == "N/A" {
		return
	}
	go n.sendConfirmation(result, email)
}

func (n *Notifier) sendConfirmation(result *fulfillment.Result, email string) {
	html := utils.GenerateOrderConfirmationHTML(result.Order, result.Shipment)

	pdf, err := utils.GenerateInvoicePDF(result.Order.ID.String(), result.Order.Amount)
	if err != nil {
		// L'e-mail part quand même, sans la facture
		log.Printf("⚠️ Erreur génération facture PDF pour %s: %v", result.Order.ID, err)
		pdf = nil
	}

	if err := utils.SendEmail(email, "✅ Commande confirmée - Egwinch", html, pdf); err != nil {
		log.Printf("❌ Erreur envoi e-mail de confirmation à %s: %v", email, err)
		return
	}
	log.Printf("📧 Confirmation de commande envoyée à %s", email)
}

func (n *Notifier) publishFeed(result *fulfillment.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := json.Marshal(result.Summary)
	if err != nil {
		return
	}
	if err := n.rdb.Publish(ctx, OrdersFeedChannel, payload).Err(); err != nil {
		log.Printf("⚠️ Erreur publication flux commandes: %v", err)
	}
}
