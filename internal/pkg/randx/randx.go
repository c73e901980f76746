/*
Package randx provides functions for generating random identifiers.

It is used to generate client-assigned correlation ids for outbound commands
and random guest nicknames for users who join without choosing a name.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// GuestNicknameRandomLength is the number of random characters appended
	// to the guest nickname prefix.
	GuestNicknameRandomLength = 6
)

// TempID generates a UUID v4 string used as a client-assigned correlation id
// on outbound chat commands.
func TempID() string {
	return uuid.New().String()
}

// GuestNickname generates a random nickname with a "Guest_" prefix and six
// random Base62 characters, using a cryptographically secure source.
func GuestNickname() (string, error) {
	result := make([]byte, GuestNicknameRandomLength)

	for i := 0; i < GuestNicknameRandomLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number for nickname: %v", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return "Guest_" + string(result), nil
}
