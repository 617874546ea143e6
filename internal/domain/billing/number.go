package billing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	numberPrefix         = "INV-"
	numberRandomLength   = 4
	maxCollisionAttempts = 100
	fallbackHexLength    = 8
	numberAlphabet       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NumberChecker consulta si un número de factura ya está almacenado.
type NumberChecker interface {
	BillNumberExists(ctx context.Context, number string) (bool, error)
}

// NumberGenerator genera números de factura legibles: INV-YYMMDDXXXX.
// La unicidad definitiva la garantiza la constraint UNIQUE de la tabla; quien
// persiste vuelve a llamar a Generate si el INSERT choca.
type NumberGenerator struct {
	checker NumberChecker
	now     func() time.Time
	random  func(n int) (string, error)
}

// NewNumberGenerator construye el generador con reloj real y aleatoriedad criptográfica.
func NewNumberGenerator(checker NumberChecker) *NumberGenerator {
	return NewNumberGeneratorWith(checker, time.Now, randomAlphanumeric)
}

// NewNumberGeneratorWith permite inyectar reloj y fuente aleatoria.
func NewNumberGeneratorWith(checker NumberChecker, now func() time.Time, random func(n int) (string, error)) *NumberGenerator {
	return &NumberGenerator{checker: checker, now: now, random: random}
}

// Generate devuelve un número libre. Ante colisión agrega -1, -2, ...; tras
// maxCollisionAttempts comprobaciones fallidas usa INV-<8 hex> sin volver a comprobar.
func (g *NumberGenerator) Generate(ctx context.Context) (string, error) {
	suffix, err := g.random(numberRandomLength)
	if err != nil {
		return "", fmt.Errorf("número de factura: %w", err)
	}
	base := numberPrefix + g.now().Format("060102") + suffix

	candidate := base
	for attempt := 1; attempt <= maxCollisionAttempts; attempt++ {
		exists, err := g.checker.BillNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("verificar número de factura: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return fallbackNumber(), nil
}

func fallbackNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return numberPrefix + strings.ToUpper(hex[:fallbackHexLength])
}

func randomAlphanumeric(n int) (string, error) {
	max := big.NewInt(int64(len(numberAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(numberAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
