package services

import (
	"context"
	"testing"
	"time"

	"vastra_back_end/internal/cache"
	"vastra_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	users  *fakeUserStore
	ledger *cache.MemoryOTPLedger
	sms    *fakeSMS
	svc    *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  newFakeUserStore(),
		ledger: cache.NewMemoryOTPLedger(),
		sms:    &fakeSMS{},
	}
	f.svc = NewAuthService(f.users, f.ledger, f.sms)
	return f
}

func TestSignupFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.RequestSignupCode(ctx, "9876543210"))
	require.Equal(t, 1, f.sms.sent)
	require.Len(t, f.sms.lastCode, 6)

	user, err := f.svc.VerifySignupCode(ctx, "9876543210", f.sms.lastCode)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", user.Phone)
	assert.Equal(t, "user", user.Role)
	assert.False(t, user.ID.IsZero())
}

func TestSignupPhoneValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	var validation *ValidationError
	for _, phone := range []string{"", "12345", "98765432100", "98765abcde"} {
		err := f.svc.RequestSignupCode(ctx, phone)
		assert.ErrorAs(t, err, &validation, "phone %q", phone)
	}
	assert.Zero(t, f.sms.sent)
}

func TestSignupConflictBeforeDispatch(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{Phone: "9876543210", Role: "user"}))

	err := f.svc.RequestSignupCode(ctx, "9876543210")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	// Aucun SMS parti, aucun code stocké
	assert.Zero(t, f.sms.sent)
	_, ok := f.ledger.Get(ctx, "signup:9876543210")
	assert.False(t, ok)
}

func TestSignupDispatchFailureStoresNothing(t *testing.T) {
	f := newAuthFixture()
	f.sms.fail = true
	ctx := context.Background()

	err := f.svc.RequestSignupCode(ctx, "9876543210")
	var delivery *DeliveryError
	require.ErrorAs(t, err, &delivery)

	_, ok := f.ledger.Get(ctx, "signup:9876543210")
	assert.False(t, ok)
}

func TestVerifySignupCodeSingleUse(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.RequestSignupCode(ctx, "9876543210"))
	code := f.sms.lastCode

	_, err := f.svc.VerifySignupCode(ctx, "9876543210", code)
	require.NoError(t, err)

	// Deuxième vérification avec le même code : l'entrée a été consommée
	_, err = f.svc.VerifySignupCode(ctx, "9876543210", code)
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}

func TestVerifySignupWrongCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.RequestSignupCode(ctx, "9876543210"))

	wrong := "000000"
	if f.sms.lastCode == wrong {
		wrong = "000001"
	}
	_, err := f.svc.VerifySignupCode(ctx, "9876543210", wrong)
	var invalid *InvalidCodeError
	require.ErrorAs(t, err, &invalid)

	// Le code reste utilisable après une tentative ratée
	_, err = f.svc.VerifySignupCode(ctx, "9876543210", f.sms.lastCode)
	assert.NoError(t, err)
}

func TestVerifySignupNeverRequested(t *testing.T) {
	f := newAuthFixture()

	_, err := f.svc.VerifySignupCode(context.Background(), "9876543210", "123456")
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}

func TestLoginFlow(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{Phone: "9876543210", Role: "user"}))

	require.NoError(t, f.svc.RequestLoginCode(ctx, "9876543210"))
	user, err := f.svc.VerifyLoginCode(ctx, "9876543210", f.sms.lastCode)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", user.Phone)
}

func TestLoginUnknownPhone(t *testing.T) {
	f := newAuthFixture()

	err := f.svc.RequestLoginCode(context.Background(), "9876543210")
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Zero(t, f.sms.sent)
}

func TestLoginBlockedUser(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{Phone: "9876543210", Role: "user", IsBlocked: true}))

	err := f.svc.RequestLoginCode(ctx, "9876543210")
	var forbidden *ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Zero(t, f.sms.sent)

	// Aucun code stocké : la vérification tombe en "expiré"
	_, err = f.svc.VerifyLoginCode(ctx, "9876543210", "123456")
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}

func TestLoginBlockedBetweenSteps(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	user := &models.User{Phone: "9876543210", Role: "user"}
	require.NoError(t, f.users.Create(ctx, user))
	require.NoError(t, f.svc.RequestLoginCode(ctx, "9876543210"))

	// Le compte est bloqué entre les deux étapes
	f.users.users[user.ID].IsBlocked = true

	_, err := f.svc.VerifyLoginCode(ctx, "9876543210", f.sms.lastCode)
	var forbidden *ForbiddenError
	assert.ErrorAs(t, err, &forbidden)
}

func TestSignupAndLoginCodesAreScopedSeparately(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{Phone: "9876543210", Role: "user"}))
	require.NoError(t, f.svc.RequestLoginCode(ctx, "9876543210"))

	// Un code login ne débloque pas une vérification signup
	_, err := f.svc.VerifySignupCode(ctx, "9876543210", f.sms.lastCode)
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}

func TestLoginCodeExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	current := now
	f := newAuthFixture()
	f.ledger.WithClock(func() time.Time { return current })
	ctx := context.Background()

	require.NoError(t, f.users.Create(ctx, &models.User{Phone: "9876543210", Role: "user"}))
	require.NoError(t, f.svc.RequestLoginCode(ctx, "9876543210"))

	// À T+299s le code est encore valable
	current = now.Add(299 * time.Second)
	_, ok := f.ledger.Get(ctx, "login:9876543210")
	require.True(t, ok)

	// À T+301s il a expiré
	current = now.Add(301 * time.Second)
	_, err := f.svc.VerifyLoginCode(ctx, "9876543210", f.sms.lastCode)
	var expired *ExpiredError
	assert.ErrorAs(t, err, &expired)
}
