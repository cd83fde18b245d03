package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"vastra_back_end/internal/models"

	"github.com/wneessen/go-mail"
)

// SendEmail envoie un e-mail HTML via le SMTP configuré.
func SendEmail(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@vastra.in"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
		port = p
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderConfirmationEmail envoie la confirmation de commande. Best-effort :
// l'appelant ne doit jamais faire échouer la commande sur une erreur SMTP.
func SendOrderConfirmationEmail(order *models.Order, userEmail string) error {
	if userEmail == "" {
		return nil
	}
	html := generateOrderConfirmationHTML(order)
	if err := SendEmail(userEmail, "🛍️ Confirmation de votre commande - Vastra", html); err != nil {
		log.Printf("⚠️ Erreur envoi email confirmation: %v", err)
		return err
	}
	return nil
}

// SendOrderStatusEmail notifie un changement de statut (livrée / annulée).
func SendOrderStatusEmail(order *models.Order, userEmail, status string) error {
	if userEmail == "" {
		return nil
	}

	var subject string
	switch status {
	case "delivered":
		subject = "🎉 Votre commande a été livrée - Vastra"
	case "cancelled":
		subject = "❌ Commande annulée - Vastra"
	default:
		subject = "📋 Mise à jour de votre commande - Vastra"
	}

	html := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>Commande n° %s — nouveau statut : <strong>%s</strong></p>
	</div>
</body>
</html>`, order.ID.Hex(), status)

	if err := SendEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}
	log.Printf("📧 Email de statut envoyé: %s → %s", status, userEmail)
	return nil
}

func generateOrderConfirmationHTML(order *models.Order) string {
	itemsHTML := ""
	for _, item := range order.Products {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s (%s)</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f₹</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f₹</td>
			</tr>`, item.Title, item.Size, item.Quantity, item.UnitPrice(), item.UnitPrice()*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour %s,</p>
		<p>Votre commande n° %s a bien été enregistrée.</p>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
		</table>

		<p style="font-size: 18px;"><strong>Total : %.2f₹</strong></p>
		<p>Mode de paiement : %s</p>
	</div>
</body>
</html>`, order.ShippingAddress.FullName, order.ID.Hex(), itemsHTML, order.TotalAmount, order.PaymentMethod)
}
