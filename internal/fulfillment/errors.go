package fulfillment

import "errors"

var (
	// ErrInvalidPaymentMetadata : la session Stripe ne porte pas de user_id
	// exploitable. Fatal, signe d'une mauvaise configuration de l'intégration.
	ErrInvalidPaymentMetadata = errors.New("session de paiement sans user_id dans les métadonnées")

	// ErrEmptyCart : pas de panier ou panier vide au moment du traitement
	ErrEmptyCart = errors.New("panier vide ou introuvable")

	// ErrEventInFlight : une autre livraison du même événement est en cours de
	// traitement. Stripe retentera ; elle verra alors le résultat enregistré.
	ErrEventInFlight = errors.New("événement déjà en cours de traitement")
)
