package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP génère un code à 6 chiffres (100000–999999).
// Retourné en string : la comparaison se fait toujours en string pour éviter
// toute ambiguïté de zéros de tête.
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand ne tombe jamais en pratique ; pas de fallback faible
		panic(fmt.Sprintf("otp: source aléatoire indisponible: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}
