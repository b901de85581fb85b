package sources

import "regexp"

// Farmers routinely dictate their own phone number or email into a
// question. Nothing identifying may cross the boundary to an external
// search endpoint, so outbound query text is scrubbed first.
var (
	outboundEmailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	outboundPhonePattern = regexp.MustCompile(`\+?[0-9][0-9\-. ()]{6,}[0-9]`)
)

// scrubOutbound redacts contact details from query text.
func scrubOutbound(text string) string {
	text = outboundEmailPattern.ReplaceAllString(text, "[EMAIL_REDACTED]")
	text = outboundPhonePattern.ReplaceAllString(text, "[PHONE_REDACTED]")
	return text
}
