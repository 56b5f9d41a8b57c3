package models

import (
	"strings"
	"unicode"

	"github.com/gocql/gocql"
	"golang.org/x/text/unicode/norm"
)

type CategoryType string

const (
	CategorySupermarket CategoryType = "supermarket"
	CategorySnacks      CategoryType = "snacks"
)

type Category struct {
	ID   gocql.UUID   `json:"id" db:"category_id"`
	Name string       `json:"name" db:"name"`
	Slug string       `json:"slug" db:"slug"`
	Type CategoryType `json:"type" db:"type"`
}

var snackKeywords = []string{"lanche", "hambúrguer", "pizza", "hot dog", "cachorro quente", "macarrão", "combo", "sobremesa"}

// EffectiveType devolve o tipo gravado ou, para categorias antigas sem tipo,
// deduz pelo nome.
func (c Category) EffectiveType() CategoryType {
	switch c.Type {
	case CategorySupermarket, CategorySnacks:
		return c.Type
	}
	if IsSnackName(c.Name) {
		return CategorySnacks
	}
	return CategorySupermarket
}

// IsSnackName classifica um nome de categoria pelas palavras-chave de lanchonete.
// "leite" nunca é lanche (ex.: "Leite Condensado").
func IsSnackName(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "leite") {
		return false
	}
	for _, kw := range snackKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func ParseCategoryType(s string) (CategoryType, bool) {
	switch CategoryType(strings.ToLower(strings.TrimSpace(s))) {
	case CategorySupermarket:
		return CategorySupermarket, true
	case CategorySnacks:
		return CategorySnacks, true
	}
	return "", false
}

// Slugify: "Hambúrguer & Lanches" vira "hamburguer-lanches".
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
