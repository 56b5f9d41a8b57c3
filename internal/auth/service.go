// Package auth cuida de cadastro, login por telefone e da sessão do usuário.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"buymore_back_end/internal/models"
	"buymore_back_end/internal/store"
)

const (
	RoleCustomer      = "customer"
	MinPasswordLength = 6
	minPhoneDigits    = 8
)

var (
	ErrInvalidCredentials = errors.New("telefone ou senha incorretos")
	ErrPhoneTaken         = errors.New("já existe uma conta com este telefone")
	ErrInvalidSignUp      = errors.New("cadastro incompleto")
	ErrRevoked            = errors.New("sessão encerrada")
)

// Blacklist guarda o jti dos tokens revogados até expirarem.
type Blacklist interface {
	BlacklistToken(ctx context.Context, tokenID string, duration time.Duration) error
	IsTokenBlacklisted(ctx context.Context, tokenID string) bool
}

type SignUpInput struct {
	Phone    string `json:"phone"`
	FullName string `json:"full_name"`
	House    string `json:"house"`
	Room     string `json:"room"`
	Password string `json:"password"`
}

// Validate lista os campos faltando.
func (in SignUpInput) Validate() error {
	var missing []string
	if len(models.DigitsOnly(in.Phone)) < minPhoneDigits {
		missing = append(missing, "telefone")
	}
	if strings.TrimSpace(in.FullName) == "" {
		missing = append(missing, "nome")
	}
	if len(in.Password) < MinPasswordLength {
		missing = append(missing, fmt.Sprintf("senha (mínimo %d caracteres)", MinPasswordLength))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSignUp, strings.Join(missing, ", "))
	}
	return nil
}

// Result é o que o cliente recebe ao entrar.
type Result struct {
	Token   string  `json:"token"`
	Session Session `json:"session"`
}

type Service struct {
	users     store.Users
	tokens    *Tokens
	blacklist Blacklist
	hub       *Hub
}

// NewService aceita blacklist nil (logout só descarta o token no cliente).
func NewService(users store.Users, tokens *Tokens, blacklist Blacklist, hub *Hub) *Service {
	if hub == nil {
		hub = NewHub()
	}
	return &Service{users: users, tokens: tokens, blacklist: blacklist, hub: hub}
}

func (s *Service) Hub() *Hub { return s.hub }

// SignUp cria usuário e perfil ainda não aprovado e já abre a sessão.
func (s *Service) SignUp(ctx context.Context, in SignUpInput, anonCartID string) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return Result{}, fmt.Errorf("erro ao gerar hash da senha: %w", err)
	}

	u := models.User{Email: models.LoginEmail(in.Phone), Password: hash}
	p := models.Profile{
		FullName: strings.TrimSpace(in.FullName),
		Phone:    in.Phone,
		House:    in.House,
		Room:     in.Room,
		Approved: false,
	}
	if err := s.users.CreateUser(ctx, &u, &p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Result{}, ErrPhoneTaken
		}
		return Result{}, fmt.Errorf("erro ao criar usuário: %w", err)
	}
	log.Printf("✅ Novo cadastro %s aguardando aprovação", u.Email)

	return s.open(ctx, u, p, false, anonCartID)
}

// SignIn troca telefone + senha por um token.
func (s *Service) SignIn(ctx context.Context, phone, password, anonCartID string) (Result, error) {
	u, err := s.users.GetUserByEmail(ctx, models.LoginEmail(phone))
	if errors.Is(err, store.ErrNotFound) {
		return Result{}, ErrInvalidCredentials
	}
	if err != nil {
		return Result{}, err
	}
	ok, err := VerifyPassword(password, u.Password)
	if err != nil {
		log.Printf("⚠️ Hash inválido para %s: %v", u.Email, err)
		return Result{}, ErrInvalidCredentials
	}
	if !ok {
		return Result{}, ErrInvalidCredentials
	}

	p, err := s.users.GetProfile(ctx, u.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return Result{}, err
	}
	isAdmin := store.HasRole(ctx, s.users, u.ID, models.RoleAdmin)
	return s.open(ctx, u, p, isAdmin, anonCartID)
}

func (s *Service) open(ctx context.Context, u models.User, p models.Profile, isAdmin bool, anonCartID string) (Result, error) {
	role := RoleCustomer
	if isAdmin {
		role = models.RoleAdmin
	}
	token, claims, err := s.tokens.Issue(u.ID, u.Email, role)
	if err != nil {
		return Result{}, fmt.Errorf("erro ao gerar token: %w", err)
	}
	u.Password = ""
	sess := Session{User: u, Profile: p, IsAdmin: isAdmin, Claims: claims}
	s.hub.Publish(ctx, Event{Type: SignedIn, Session: sess, AnonCartID: anonCartID})
	return Result{Token: token, Session: sess}, nil
}

// Resolve valida o token e monta a sessão com perfil e papel atuais.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.blacklist != nil && claims.JTI != "" && s.blacklist.IsTokenBlacklisted(ctx, claims.JTI) {
		return nil, ErrRevoked
	}
	p, err := s.users.GetProfile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: perfil não encontrado", ErrInvalidToken)
		}
		return nil, err
	}
	return &Session{
		User:    models.User{ID: claims.UserID, Email: claims.Email},
		Profile: p,
		IsAdmin: store.HasRole(ctx, s.users, claims.UserID, models.RoleAdmin),
		Claims:  claims,
	}, nil
}

// SignOut avisa os ouvintes; a revogação do token fica com RevokeOnSignOut.
func (s *Service) SignOut(ctx context.Context, sess *Session) {
	if sess == nil {
		return
	}
	s.hub.Publish(ctx, Event{Type: SignedOut, Session: *sess})
}

// RevokeOnSignOut coloca o jti na blacklist pelo tempo que falta ao token.
func (s *Service) RevokeOnSignOut() Listener {
	return func(ctx context.Context, ev Event) {
		if ev.Type != SignedOut || s.blacklist == nil || ev.Session.Claims.JTI == "" {
			return
		}
		ttl := ev.Session.Claims.Remaining(s.tokens.now())
		if ttl == 0 {
			return
		}
		if err := s.blacklist.BlacklistToken(ctx, ev.Session.Claims.JTI, ttl); err != nil {
			log.Printf("❌ Erro ao revogar token de %s: %v", ev.Session.User.Email, err)
		}
	}
}
