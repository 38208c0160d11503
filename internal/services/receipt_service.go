package services

import (
	"context"
	"fmt"

	"github.com/Fatumayattani/lumi-hub/internal/config"

	brevo "github.com/getbrevo/brevo-go/lib"
	"github.com/shopspring/decimal"
)

// ReceiptService sends purchase receipt emails via Brevo
type ReceiptService struct {
	client    *brevo.APIClient
	fromEmail string
	fromName  string
}

// NewReceiptService creates a new receipt service instance. When no API
// key is configured, sending becomes a no-op.
func NewReceiptService() *ReceiptService {
	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", config.AppConfig.BrevoAPIKey)
	return &ReceiptService{
		client:    brevo.NewAPIClient(cfg),
		fromEmail: config.AppConfig.BrevoFromEmail,
		fromName:  config.AppConfig.BrevoFromName,
	}
}

// SendPurchaseReceipt emails the buyer a receipt for a confirmed purchase
func (s *ReceiptService) SendPurchaseReceipt(toEmail, productName string, amount decimal.Decimal, transactionHash string) error {
	if config.AppConfig.BrevoAPIKey == "" || s.fromEmail == "" {
		// Email not configured
		return nil
	}

	subject := fmt.Sprintf("Your purchase of %s", productName)
	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px;">
				<h1 style="color: #333;">Thanks for your purchase!</h1>
				<p style="color: #666; font-size: 16px;">You bought <strong>%s</strong> for $%s.</p>
				<p style="color: #666; font-size: 14px;">Transaction: <code>%s</code></p>
				<p style="color: #999; font-size: 12px; margin-top: 30px;">Your download is available from your Lumi Hub orders page.</p>
			</div>
		</body>
		</html>
	`, productName, amount.StringFixed(2), transactionHash)

	textContent := fmt.Sprintf(
		"Thanks for your purchase!\n\nYou bought %s for $%s.\nTransaction: %s\n\nYour download is available from your Lumi Hub orders page.",
		productName, amount.StringFixed(2), transactionHash)

	email := brevo.SendSmtpEmail{
		Sender: &brevo.SendSmtpEmailSender{
			Name:  s.fromName,
			Email: s.fromEmail,
		},
		To: []brevo.SendSmtpEmailTo{
			{Email: toEmail},
		},
		Subject:     subject,
		HtmlContent: htmlContent,
		TextContent: textContent,
	}

	if _, _, err := s.client.TransactionalEmailsApi.SendTransacEmail(context.Background(), email); err != nil {
		return fmt.Errorf("failed to send receipt email: %w", err)
	}
	return nil
}
