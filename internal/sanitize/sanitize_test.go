package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Alice ", "Alice"},
		{"tags stripped", "<b>Bold</b> move", "Bold move"},
		{"script dropped", "hi<script>alert(1)</script>", "hi"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"bare ampersand", "Snakes & Ladders", "Snakes & Ladders"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", Email(" Alice@Example.COM "))
}
