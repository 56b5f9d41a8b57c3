package models

import (
	"encoding/json"
	"testing"

	"github.com/gocql/gocql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryEffectiveType(t *testing.T) {
	cases := map[string]CategoryType{
		"Lanches":             CategorySnacks,
		"Pizza Doce":          CategorySnacks,
		"Cachorro Quente":     CategorySnacks,
		"Leite Condensado":    CategorySupermarket,
		"Sobremesa com leite": CategorySupermarket,
		"Higiene":             CategorySupermarket,
	}
	for name, want := range cases {
		assert.Equal(t, want, Category{Name: name}.EffectiveType(), name)
	}
	// tipo gravado vence as palavras-chave
	assert.Equal(t, CategorySupermarket, Category{Name: "Pizza congelada", Type: CategorySupermarket}.EffectiveType())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hamburguer-lanches", Slugify("Hambúrguer & Lanches"))
	assert.Equal(t, "acai-500ml", Slugify("  Açaí 500ml "))
	assert.Equal(t, "", Slugify("!!"))
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]PaymentMethod{
		"pix": PaymentPix, "cartao": PaymentCreditCard, "Dinheiro": PaymentCash,
		"debit_card": PaymentDebitCard, "credit_card": PaymentCreditCard,
	} {
		got, ok := ParsePaymentMethod(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParsePaymentMethod("")
	assert.False(t, ok)
	_, ok = ParsePaymentMethod("boleto")
	assert.False(t, ok)
}

func TestLoginEmail(t *testing.T) {
	assert.Equal(t, "11988887777@temp.com", LoginEmail("(11) 98888-7777"))
	assert.Equal(t, "Casa 3 - Quarto 12", Profile{House: "3", Room: "12"}.Address())
	assert.Equal(t, "Casa 3", Profile{House: "3"}.Address())
}

func TestPromotionJSON_Variants(t *testing.T) {
	pid := gocql.TimeUUID()
	bundle := Promotion{
		ID:    gocql.TimeUUID(),
		Title: "Leve 3",
		Offer: ProductBundle{ProductID: pid, Quantity: 3, SpecialPrice: decimal.RequireFromString("25")},
	}
	data, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"bundle"`)
	assert.NotContains(t, string(data), "discount_percentage")

	var back Promotion
	require.NoError(t, json.Unmarshal(data, &back))
	b, ok := back.Offer.(ProductBundle)
	require.True(t, ok)
	assert.Equal(t, pid, b.ProductID)
	assert.Equal(t, 3, b.Quantity)

	// formulário antigo sem "kind"
	var legacy Promotion
	require.NoError(t, json.Unmarshal([]byte(`{"title":"10% off","discount_percentage":"10"}`), &legacy))
	assert.IsType(t, PercentageDiscount{}, legacy.Offer)

	var bad Promotion
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"title":"nada"}`), &bad), ErrUnknownOffer)
}
