package service

import "golang.org/x/crypto/bcrypt"

// Credentials hashes and verifies passwords with bcrypt.
type Credentials struct {
	cost int
}

func NewCredentials(cost int) *Credentials {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &Credentials{cost: cost}
}

func (c *Credentials) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), c.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plain matches hash. A malformed hash never matches.
func (c *Credentials) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
