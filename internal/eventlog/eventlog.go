package eventlog

import (
	"context"
	"fmt"
	"time"

	"egwinch_back_end/internal/database"
)

const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"

	// Durée de vie d'une réservation non confirmée
	claimTTL = 5 * time.Minute
)

// Record est la trace d'un événement webhook reçu du prestataire de paiement
type Record struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	Status      string    `json:"status"`
	Result      string    `json:"result,omitempty"` // résumé JSON du résultat
	ReceivedAt  time.Time `json:"received_at"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
}

// Log garantit qu'un event_id n'est traité qu'une seule fois, même si Stripe
// relivre la notification. La réservation (claim) est un INSERT ... IF NOT EXISTS :
// une seule opération atomique, pas de lecture suivie d'une écriture séparée.
type Log struct{}

func NewLog() *Log {
	return &Log{}
}

// Claim tente de réserver l'événement. Retourne (true, nil) si cette livraison
// est la première ; sinon (false, enregistrement existant).
func (l *Log) Claim(ctx context.Context, eventID, eventType string) (bool, *Record, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, nil, err
	}

	// La réservation expire toute seule (TTL) : un traitement qui meurt sans
	// libérer son claim ne bloque pas les relivraisons suivantes.
	existing := map[string]interface{}{}
	applied, err := session.Query(
		`INSERT INTO webhook_events (event_id, event_type, status, received_at)
		 VALUES (?, ?, ?, ?) IF NOT EXISTS USING TTL ?`,
		eventID, eventType, StatusProcessing, time.Now(), int(claimTTL.Seconds()),
	).WithContext(ctx).MapScanCAS(existing)
	if err != nil {
		return false, nil, fmt.Errorf("erreur réservation événement %s: %v", eventID, err)
	}

	if applied {
		return true, nil, nil
	}

	prior := &Record{EventID: eventID}
	if v, ok := existing["event_type"].(string); ok {
		prior.EventType = v
	}
	if v, ok := existing["status"].(string); ok {
		prior.Status = v
	}
	if v, ok := existing["result"].(string); ok {
		prior.Result = v
	}
	if v, ok := existing["received_at"].(time.Time); ok {
		prior.ReceivedAt = v
	}
	if v, ok := existing["processed_at"].(time.Time); ok {
		prior.ProcessedAt = v
	}
	return false, prior, nil
}

// MarkProcessed enregistre le résultat pour répondre aux relivraisons futures.
// Réécrit la ligne entière sans TTL : l'enregistrement devient permanent.
func (l *Log) MarkProcessed(ctx context.Context, eventID, eventType string, result []byte) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	now := time.Now()
	return session.Query(
		`INSERT INTO webhook_events (event_id, event_type, status, result, received_at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		eventID, eventType, StatusProcessed, string(result), now, now,
	).WithContext(ctx).Exec()
}

// Release libère la réservation après un échec : l'événement redevient
// traitable par la prochaine relivraison de Stripe.
func (l *Log) Release(ctx context.Context, eventID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query(`DELETE FROM webhook_events WHERE event_id = ?`, eventID).
		WithContext(ctx).Exec()
}

// Get retourne l'enregistrement d'un événement (diagnostic opérateur)
func (l *Log) Get(ctx context.Context, eventID string) (*Record, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	r := &Record{EventID: eventID}
	err = session.Query(
		`SELECT event_type, status, result, received_at, processed_at FROM webhook_events WHERE event_id = ?`,
		eventID,
	).WithContext(ctx).Scan(&r.EventType, &r.Status, &r.Result, &r.ReceivedAt, &r.ProcessedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}
