package orders

import (
	"strconv"
	"time"

	"github.com/keranjangku/keranjangku-backend/pkg/security"
)

// NewOrderNumber builds a human-quotable order number: eight random digits
// followed by the creation unix timestamp. The random prefix keeps numbers
// unguessable; the suffix makes collisions practically impossible.
func NewOrderNumber(now time.Time) (string, error) {
	prefix, err := security.GenerateNumericCode(8)
	if err != nil {
		return "", err
	}
	return prefix + strconv.FormatInt(now.Unix(), 10), nil
}
