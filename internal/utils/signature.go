package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature vérifie la signature d'un callback de paiement.
// La passerelle signe la chaîne "<orderId>|<paymentId>" en HMAC-SHA256 avec le
// secret partagé et transmet le digest hexadécimal. La comparaison se fait en
// temps constant (hmac.Equal), jamais avec ==.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
