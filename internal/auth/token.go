package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("token inválido")

// Claims é o conteúdo do JWT da sessão.
type Claims struct {
	UserID gocql.UUID
	Email  string
	Role   string
	JTI    string
	Expiry time.Time
}

// Remaining é o tempo até o token expirar (usado como TTL da blacklist).
func (c Claims) Remaining(now time.Time) time.Duration {
	d := c.Expiry.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: TokenTTL, now: time.Now}
}

// Issue assina um HS256 com user_id, email, role, jti e exp.
func (t *Tokens) Issue(userID gocql.UUID, email, role string) (string, Claims, error) {
	now := t.now()
	c := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		JTI:    uuid.NewString(),
		Expiry: now.Add(t.ttl),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"email":   email,
		"role":    role,
		"jti":     c.JTI,
		"iat":     now.Unix(),
		"exp":     c.Expiry.Unix(),
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", Claims{}, err
	}
	return signed, c, nil
}

func (t *Tokens) Parse(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	raw, _ := claims["user_id"].(string)
	userID, err := gocql.ParseUUID(raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: user_id", ErrInvalidToken)
	}
	out := Claims{UserID: userID}
	out.Email, _ = claims["email"].(string)
	out.Role, _ = claims["role"].(string)
	out.JTI, _ = claims["jti"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expiry = exp.Time
	}
	return out, nil
}
