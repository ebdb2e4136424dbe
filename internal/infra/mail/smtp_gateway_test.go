package mail

import (
	"testing"

	"identity/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestLink_EscapesToken(t *testing.T) {
	g := &smtpGateway{frontendURL: "https://app.example.com"}

	assert.Equal(t,
		"https://app.example.com/verify?token=abc.def.ghi",
		g.link("/verify", "abc.def.ghi"),
	)
	assert.Equal(t,
		"https://app.example.com/reset-password?token=a%2Bb%3Dc",
		g.link("/reset-password", "a+b=c"),
	)
}

func TestGreetingName_FallsBack(t *testing.T) {
	assert.Equal(t, "Alice", greetingName(&entity.Account{FirstName: "Alice"}))
	assert.Equal(t, "there", greetingName(&entity.Account{}))
}
