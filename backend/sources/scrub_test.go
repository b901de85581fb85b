package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScrubOutbound(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain query untouched",
			in:   "when to harvest mangoes in late summer",
			want: "when to harvest mangoes in late summer",
		},
		{
			name: "whatsapp number redacted",
			in:   "my number is +359123456789 call me about blight",
			want: "my number is [PHONE_REDACTED] call me about blight",
		},
		{
			name: "email redacted",
			in:   "send the report to ivan.petrov@example.bg please",
			want: "send the report to [EMAIL_REDACTED] please",
		},
		{
			name: "dashed phone redacted",
			in:   "reach me on 088-123-4567 tomorrow",
			want: "reach me on [PHONE_REDACTED] tomorrow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scrubOutbound(tt.in))
		})
	}
}
