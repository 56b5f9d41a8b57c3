package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
)

const RoleAdmin = "admin"

type User struct {
	ID        gocql.UUID `json:"user_id" db:"user_id"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type Profile struct {
	ID        gocql.UUID `json:"id" db:"user_id"`
	FullName  string     `json:"full_name" db:"full_name"`
	Phone     string     `json:"phone" db:"phone"`
	House     string     `json:"house" db:"house"`
	Room      string     `json:"room" db:"room"`
	Approved  bool       `json:"approved" db:"approved"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Address monta o endereço de entrega a partir de casa/quarto do cadastro.
func (p Profile) Address() string {
	var parts []string
	if p.House != "" {
		parts = append(parts, "Casa "+p.House)
	}
	if p.Room != "" {
		parts = append(parts, "Quarto "+p.Room)
	}
	return strings.Join(parts, " - ")
}

type UserRole struct {
	UserID gocql.UUID `json:"user_id" db:"user_id"`
	Role   string     `json:"role" db:"role"`
}

// LoginEmail gera o e-mail técnico usado no login por telefone.
func LoginEmail(phone string) string {
	return fmt.Sprintf("%s@temp.com", DigitsOnly(phone))
}

func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
