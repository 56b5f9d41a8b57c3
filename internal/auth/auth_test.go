package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"buymore_back_end/internal/cache"
	"buymore_back_end/internal/models"
	"buymore_back_end/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	users := store.NewMemory()
	svc := NewService(users, NewTokens("test-secret"), cache.NewRedis(rdb), NewHub())
	svc.Hub().Subscribe(svc.RevokeOnSignOut())
	return svc, users
}

var maria = SignUpInput{
	Phone:    "(11) 98888-7777",
	FullName: "Maria Silva",
	House:    "3",
	Room:     "12",
	Password: "segredo1",
}

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := HashPassword("segredo1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=4$"))

	ok, err := VerifyPassword("segredo1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("errada", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyPassword("x", "$2a$10$bcrypt")
	assert.Error(t, err)
}

func TestTokens_RoundTripAndExpiry(t *testing.T) {
	tokens := NewTokens("s")
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return now }

	u := models.User{ID: gocql.TimeUUID(), Email: "11988887777@temp.com"}
	signed, issued, err := tokens.Issue(u.ID, u.Email, RoleCustomer)
	require.NoError(t, err)

	got, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, RoleCustomer, got.Role)
	assert.Equal(t, issued.JTI, got.JTI)
	assert.Equal(t, 24*time.Hour, got.Remaining(now))

	now = now.Add(25 * time.Hour)
	_, err = tokens.Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokens("outro").Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignUp_CreatesUnapprovedProfile(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()

	res, err := svc.SignUp(ctx, maria, "")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "11988887777@temp.com", res.Session.User.Email)
	assert.Empty(t, res.Session.User.Password)
	assert.False(t, res.Session.Approved())

	p, err := users.GetProfile(ctx, res.Session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", p.FullName)
	assert.False(t, p.Approved)

	_, err = svc.SignUp(ctx, maria, "")
	assert.ErrorIs(t, err, ErrPhoneTaken)
}

func TestSignUp_ValidatesFields(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.SignUp(context.Background(), SignUpInput{Phone: "123", Password: "1"}, "")
	require.ErrorIs(t, err, ErrInvalidSignUp)
	assert.Contains(t, err.Error(), "telefone")
	assert.Contains(t, err.Error(), "nome")
	assert.Contains(t, err.Error(), "senha")
}

func TestSignIn(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, maria, "")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "11988887777", "errada", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "11900000000", "segredo1", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.SignIn(ctx, "11 98888 7777", "segredo1", "")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", res.Session.Profile.FullName)
}

func TestResolve_AdminAlwaysApproved(t *testing.T) {
	svc, users := newService(t)
	ctx := context.Background()
	res, err := svc.SignUp(ctx, maria, "")
	require.NoError(t, err)

	sess, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.False(t, sess.Approved())

	require.NoError(t, users.GrantRole(ctx, sess.User.ID, models.RoleAdmin))
	sess, err = svc.Resolve(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, sess.IsAdmin)
	assert.True(t, sess.Approved())

	c := sess.Customer()
	assert.Equal(t, "Maria Silva", c.Name)
	assert.Equal(t, "Casa 3 - Quarto 12", c.Address)
}

func TestSignOut_RevokesToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	res, err := svc.SignUp(ctx, maria, "")
	require.NoError(t, err)

	sess, err := svc.Resolve(ctx, res.Token)
	require.NoError(t, err)

	svc.SignOut(ctx, sess)
	_, err = svc.Resolve(ctx, res.Token)
	assert.ErrorIs(t, err, ErrRevoked)
}

func TestHub_SignInEventCarriesAnonCart(t *testing.T) {
	svc, _ := newService(t)
	var got []Event
	unsubscribe := svc.Hub().Subscribe(func(_ context.Context, ev Event) {
		got = append(got, ev)
	})

	_, err := svc.SignUp(context.Background(), maria, "anon-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SignedIn, got[0].Type)
	assert.Equal(t, "anon-1", got[0].AnonCartID)

	unsubscribe()
	unsubscribe()
	_, err = svc.SignIn(context.Background(), maria.Phone, maria.Password, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
