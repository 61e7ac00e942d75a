package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logistics-kit/delivery-service/internal/config"
	"github.com/logistics-kit/delivery-service/internal/domain"
	"github.com/logistics-kit/delivery-service/internal/events"
)

func newAuthFixture(users *fakeUserStore, dispatcher events.Dispatcher) *AuthService {
	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 60
	cfg.Auth.BcryptCost = 4
	return NewAuthService(cfg, users, dispatcher)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Email:    "courier@example.com",
		FullName: "Jo Courier",
		Password: "s3cret-pass",
		Role:     domain.RoleDriver,
	}
}

func TestRegister(t *testing.T) {
	t.Run("driver self-registration issues a token", func(t *testing.T) {
		dispatcher := &recordingDispatcher{}
		service := newAuthFixture(newFakeUserStore(), dispatcher)

		user, token, exp, err := service.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		assert.Equal(t, "courier@example.com", user.Email)
		assert.Equal(t, domain.RoleDriver, user.Role)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEmpty(t, token)
		assert.False(t, exp.IsZero())

		published := dispatcher.published()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventUserRegistered, published[0].Type)
	})

	t.Run("email is normalized", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		input := validRegisterInput()
		input.Email = "  Courier@Example.COM "

		user, _, _, err := service.Register(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "courier@example.com", user.Email)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		input := validRegisterInput()
		input.Password = ""
		_, _, _, err := service.Register(context.Background(), input)
		requireDomainCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("admin self-registration rejected", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		input := validRegisterInput()
		input.Role = domain.RoleAdmin
		_, _, _, err := service.Register(context.Background(), input)
		requireDomainCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)

		_, _, _, err := service.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)
		_, _, _, err = service.Register(context.Background(), validRegisterInput())
		requireDomainCode(t, err, "CONFLICT")
	})
}

func TestLogin(t *testing.T) {
	t.Run("valid credentials issue a token", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		_, _, _, err := service.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)

		user, token, _, err := service.Login(context.Background(), "courier@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "courier@example.com", user.Email)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		_, _, _, err := service.Register(context.Background(), validRegisterInput())
		require.NoError(t, err)

		_, _, _, err = service.Login(context.Background(), "courier@example.com", "wrong")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		service := newAuthFixture(newFakeUserStore(), nil)
		_, _, _, err := service.Login(context.Background(), "nobody@example.com", "whatever")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})
}
