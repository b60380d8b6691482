package signaling

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999

	// maxCodeAttempts bounds regeneration when a drawn code is already taken.
	maxCodeAttempts = 32
)

var codeSpan = big.NewInt(maxCode - minCode + 1)

// CodeGenerator returns a candidate pairing code.
type CodeGenerator func() (string, error)

// RandomCode draws a 6-digit code uniformly from [100000, 999999] using a
// cryptographically secure source.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", fmt.Errorf("generate pairing code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

// generateCode keeps drawing until it finds a code with no live room behind it.
func (h *Hub) generateCode() (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := h.newCode()
		if err != nil {
			return "", err
		}
		if _, taken := h.rooms[code]; !taken {
			return code, nil
		}
		metricCodeCollisions.Inc()
		h.logger.Warn("pairing code collision, regenerating", "code", code, "attempt", attempt+1)
	}
	return "", fmt.Errorf("no free pairing code after %d attempts", maxCodeAttempts)
}
