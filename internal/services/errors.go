package services

import "fmt"

// Taxonomie d'erreurs métier. Les handlers font le mapping type → statut HTTP
// via errors.As ; tout le reste remonte en 500 générique.

// ValidationError — entrée manquante ou mal formée (400).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError — entité référencée absente (404).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " introuvable"
	}
	return fmt.Sprintf("%s introuvable: %s", e.Resource, e.ID)
}

// ConflictError — doublon ou course perdue (409).
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// ForbiddenError — compte bloqué (403).
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// ExpiredError — code OTP expiré ou jamais demandé (400).
// Les deux cas sont volontairement indistinguables pour le client.
type ExpiredError struct {
	Msg string
}

func (e *ExpiredError) Error() string { return e.Msg }

// InvalidCodeError — code OTP incorrect (401).
type InvalidCodeError struct {
	Msg string
}

func (e *InvalidCodeError) Error() string { return e.Msg }

// DeliveryError — échec d'envoi du SMS (500). Le code n'a pas été stocké.
type DeliveryError struct {
	Msg string
	Err error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *DeliveryError) Unwrap() error { return e.Err }
