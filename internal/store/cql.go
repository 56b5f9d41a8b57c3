package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"
)

// toDec converte para o tipo que o gocql grava em colunas decimal.
func toDec(d decimal.Decimal) *inf.Dec {
	return inf.NewDecBig(d.Coefficient(), inf.Scale(-d.Exponent()))
}

func fromDec(d *inf.Dec) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(d.UnscaledBig(), -int32(d.Scale()))
}

func optDec(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return toDec(*d)
}

func optUUID(id *gocql.UUID) interface{} {
	if id == nil || *id == (gocql.UUID{}) {
		return nil
	}
	return *id
}

func uuidPtr(id gocql.UUID) *gocql.UUID {
	if id == (gocql.UUID{}) {
		return nil
	}
	return &id
}

func optTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func wrapNotFound(err error, what string, id interface{}) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return fmt.Errorf("%s %v: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("%s %v: %w", what, id, err)
}

func decPtr(d *inf.Dec) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := fromDec(d)
	return &v
}
