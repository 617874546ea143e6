package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/santoshvandari/AccountingSystem/internal/application/dto"
	"github.com/santoshvandari/AccountingSystem/internal/domain"
	"github.com/santoshvandari/AccountingSystem/internal/domain/access"
	"github.com/santoshvandari/AccountingSystem/internal/domain/entity"
	"github.com/santoshvandari/AccountingSystem/internal/domain/repository"
)

// usersByEmail solo implementa GetByEmail; el resto no se usa en Login.
type usersByEmail struct {
	repository.UserRepository
	users map[string]*entity.User
}

func (r usersByEmail) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.users[email], nil
}

// countingCompare registra cada comparación de bcrypt.
type countingCompare struct {
	hashes [][]byte
}

func (c *countingCompare) compare(hash, password []byte) error {
	c.hashes = append(c.hashes, hash)
	return bcrypt.CompareHashAndPassword(hash, password)
}

func TestLogin_SiempreComparaHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secreta123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := usersByEmail{users: map[string]*entity.User{
		"ana@example.com": {ID: "u1", Email: "ana@example.com", PasswordHash: string(hash), Role: access.RoleCashier, IsActive: true},
		"sin@example.com": {ID: "u2", Email: "sin@example.com", Role: access.RoleCashier, IsActive: true},
	}}

	cases := map[string]string{
		"email desconocido":   "nadie@example.com",
		"usuario sin hash":    "sin@example.com",
		"password incorrecta": "ana@example.com",
	}
	for name, email := range cases {
		t.Run(name, func(t *testing.T) {
			counter := &countingCompare{}
			uc := NewAuthUseCase(repo, access.Policy{}, JWTConfig{Secret: "s", ExpMinutes: 5})
			uc.compare = counter.compare

			_, err := uc.Login(context.Background(), dto.LoginRequest{Email: email, Password: "otra-clave"})
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
			require.Len(t, counter.hashes, 1, "una comparación bcrypt por intento")
			assert.NotEmpty(t, counter.hashes[0])
		})
	}
}

func TestDummyHash_EsBcryptValido(t *testing.T) {
	cost, err := bcrypt.Cost(dummyHash())
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost, "mismo costo que los hashes reales")
}
