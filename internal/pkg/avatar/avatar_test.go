package avatar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tabchat/internal/pkg/avatar"
)

func TestURL(t *testing.T) {
	assert.Equal(t,
		"https://ui-avatars.com/api/?name=alice&background=random",
		avatar.URL("alice"),
	)
}

func TestURL_EscapesName(t *testing.T) {
	assert.Equal(t,
		"https://ui-avatars.com/api/?name=Ada+Lovelace+%26+co&background=random",
		avatar.URL("Ada Lovelace & co"),
	)
}
