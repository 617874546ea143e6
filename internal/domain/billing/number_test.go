package billing_test

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshvandari/AccountingSystem/internal/domain/billing"
)

// setChecker simula la tabla de facturas con un conjunto de números existentes.
type setChecker struct {
	mu       sync.Mutex
	existing map[string]bool
	calls    int
	err      error
}

func newSetChecker(numbers ...string) *setChecker {
	c := &setChecker{existing: make(map[string]bool)}
	for _, n := range numbers {
		c.existing[n] = true
	}
	return c
}

func (c *setChecker) BillNumberExists(_ context.Context, number string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.existing[number], nil
}

// alwaysTaken fuerza colisión en cada intento.
type alwaysTaken struct{ calls int }

func (a *alwaysTaken) BillNumberExists(context.Context, string) (bool, error) {
	a.calls++
	return true, nil
}

var fixedNow = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }

func fixedRandom(s string) func(int) (string, error) {
	return func(int) (string, error) { return s, nil }
}

func TestGenerate_FormatoPorDefecto(t *testing.T) {
	gen := billing.NewNumberGenerator(newSetChecker())

	number, err := gen.Generate(context.Background())
	require.NoError(t, err)

	today := time.Now().Format("060102")
	assert.Regexp(t, regexp.MustCompile(`^INV-`+today+`[A-Z0-9]{4}$`), number)
}

func TestGenerate_SinColision(t *testing.T) {
	gen := billing.NewNumberGeneratorWith(newSetChecker(), fixedNow, fixedRandom("AB12"))

	number, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-250307AB12", number)
}

func TestGenerate_AgregaContadorEnColision(t *testing.T) {
	checker := newSetChecker("INV-250307AB12", "INV-250307AB12-1", "INV-250307AB12-2")
	gen := billing.NewNumberGeneratorWith(checker, fixedNow, fixedRandom("AB12"))

	number, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-250307AB12-3", number)
	assert.False(t, checker.existing[number], "nunca devuelve un número existente")
	assert.Equal(t, 4, checker.calls, "una comprobación por intento")
}

func TestGenerate_FallbackHexTras100Colisiones(t *testing.T) {
	checker := &alwaysTaken{}
	gen := billing.NewNumberGeneratorWith(checker, fixedNow, fixedRandom("ZZZZ"))

	number, err := gen.Generate(context.Background())
	require.NoError(t, err, "el fallback no debe fallar")
	assert.Regexp(t, regexp.MustCompile(`^INV-[0-9A-F]{8}$`), number)
	assert.Equal(t, 100, checker.calls)
}

func TestGenerate_FallbackJustoEnElIntento100(t *testing.T) {
	taken := []string{"INV-250307AB12"}
	for i := 1; i <= 98; i++ {
		taken = append(taken, fmt.Sprintf("INV-250307AB12-%d", i))
	}
	gen := billing.NewNumberGeneratorWith(newSetChecker(taken...), fixedNow, fixedRandom("AB12"))

	number, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INV-250307AB12-99", number, "el intento 100 todavía se comprueba")
}

func TestGenerate_ErrorDelChecker(t *testing.T) {
	checker := newSetChecker()
	checker.err = errors.New("db caída")
	gen := billing.NewNumberGeneratorWith(checker, fixedNow, fixedRandom("AB12"))

	_, err := gen.Generate(context.Background())
	assert.Error(t, err)
}

func TestGenerate_ErrorDeAleatoriedad(t *testing.T) {
	gen := billing.NewNumberGeneratorWith(newSetChecker(), fixedNow, func(int) (string, error) {
		return "", errors.New("sin entropía")
	})

	_, err := gen.Generate(context.Background())
	assert.Error(t, err)
}

func TestGenerate_Concurrente(t *testing.T) {
	gen := billing.NewNumberGenerator(newSetChecker())

	var wg sync.WaitGroup
	results := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := gen.Generate(context.Background())
			if assert.NoError(t, err) {
				results <- n
			}
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for n := range results {
		assert.Regexp(t, regexp.MustCompile(`^INV-\d{6}[A-Z0-9]{4}$`), n)
		count++
	}
	assert.Equal(t, 50, count)
}
