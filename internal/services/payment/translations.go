package payment

import "strings"

// User-facing outcome messages. Localization of these labels belongs to the
// host platform; the orchestrator only guarantees stable, non-leaking text.
const (
	msgChargeSuccess  = "Charge confirmed by Iugu"
	msgCaptureSuccess = "Payment captured on Iugu"
	msgVoidSuccess    = "Payment voided on Iugu"
	msgCancelSuccess  = "Payment canceled on Iugu"

	msgGatewayFailure      = "The payment could not be processed. Please try again."
	msgMissingInstallments = "Payment has no installments selection"
	msgPaymentNotFound     = "Payment could not be resolved"
	msgOrderNotFound       = "Order could not be resolved"
	msgOfferUnavailable    = "No installment offer available for the selected count"
	msgMissingReference    = "Payment has no authorization reference"

	adjustmentLabel = "Credit card installment tax"
)

// providerErrorTranslations maps known field-level provider error strings to
// user-facing messages. Unknown strings pass through verbatim.
var providerErrorTranslations = map[string]string{
	"is not a valid credit card number": "Invalid credit card number",
}

// translateProviderMessages translates each provider message and joins them
// into one user-facing string. Empty input yields an empty string.
func translateProviderMessages(msgs []string) string {
	if len(msgs) == 0 {
		return ""
	}
	translated := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if t, ok := providerErrorTranslations[m]; ok {
			m = t
		}
		translated = append(translated, m)
	}
	return strings.Join(translated, ". ")
}
