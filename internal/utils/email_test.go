package utils

import (
	"strings"
	"testing"
	"time"

	"egwinch_back_end/internal/models"

	"github.com/gocql/gocql"
)

func TestGenerateOrderConfirmationHTML(t *testing.T) {
	order := &models.Order{
		ID:     gocql.TimeUUID(),
		Amount: 180.00,
		Items: []models.OrderItem{
			{Name: "Clavier mécanique", Price: 90.00, Quantity: 2},
		},
	}
	shipment := &models.Shipment{
		Carrier:        "Carrier_abc12345",
		TrackingNumber: "tn-0001",
		DeliveryDate:   time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
	}

	html := GenerateOrderConfirmationHTML(order, shipment)

	for _, want := range []string{
		"Clavier mécanique",
		"180.00€",
		"Carrier_abc12345",
		"tn-0001",
		"06/09/2026",
		order.ID.String()[:8],
	} {
		if !strings.Contains(html, want) {
			t.Errorf("Expected HTML to contain %q", want)
		}
	}
}

func TestStatusEmailContent(t *testing.T) {
	subject, message := statusEmailContent(models.ShipmentStatusShipped)
	if !strings.Contains(subject, "expédiée") {
		t.Errorf("Expected shipped subject, got %q", subject)
	}
	if !strings.Contains(message, "expédiée") {
		t.Errorf("Expected shipped message, got %q", message)
	}

	subject, _ = statusEmailContent(models.ShipmentStatusDelivered)
	if !strings.Contains(subject, "livrée") {
		t.Errorf("Expected delivered subject, got %q", subject)
	}

	subject, _ = statusEmailContent("UNKNOWN")
	if !strings.Contains(subject, "Mise à jour") {
		t.Errorf("Expected generic subject, got %q", subject)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("Expected 01234567, got %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("Expected abc, got %q", got)
	}
}

func TestGenerateSepaQR(t *testing.T) {
	dataURI, err := GenerateSepaQR("FR7630001007941234567890185", "BDFEFRPP", "Egwinch SAS", "FACT-42", 99.90)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !strings.HasPrefix(dataURI, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URI, got prefix %q", dataURI[:min(len(dataURI), 30)])
	}
}
