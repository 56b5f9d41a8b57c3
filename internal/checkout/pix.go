package checkout

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/unicode/norm"
)

// MaxPixKeyLength: o campo 26 (GUI + chave) não pode passar de 99 bytes.
const MaxPixKeyLength = 99 - len("0014br.gov.bcb.pix") - len("0100")

var ErrInvalidPixKey = errors.New("chave Pix inválida")

// Pix gera o "copia e cola" estático (BR Code) da chave da loja.
type Pix struct {
	Key      string
	Merchant string
	City     string
}

type PixCharge struct {
	Payload string `json:"payload"`
	QRCode  string `json:"qr_code"` // data URI PNG
}

// NewPix valida a chave antes de ligar o Pix no checkout.
func NewPix(key, merchant, city string) (*Pix, error) {
	p := &Pix{Key: strings.TrimSpace(key), Merchant: merchant, City: city}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pix) Validate() error {
	switch {
	case p.Key == "":
		return fmt.Errorf("%w: vazia", ErrInvalidPixKey)
	case len(p.Key) > MaxPixKeyLength:
		return fmt.Errorf("%w: %d bytes, máximo %d", ErrInvalidPixKey, len(p.Key), MaxPixKeyLength)
	}
	return nil
}

func emv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// ascii remove acentos e corta no tamanho máximo do campo.
func ascii(s string, limit int) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if r < unicode.MaxASCII && !unicode.Is(unicode.Mn, r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Payload monta o BR Code com valor e txid (até 25 alfanuméricos).
func (p *Pix) Payload(amount decimal.Decimal, txid string) string {
	var tx strings.Builder
	for _, r := range txid {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			tx.WriteRune(r)
		}
	}
	ref := tx.String()
	if len(ref) > 25 {
		ref = ref[:25]
	}
	if ref == "" {
		ref = "***"
	}

	payload := emv("00", "01") +
		emv("26", emv("00", "br.gov.bcb.pix")+emv("01", p.Key)) +
		emv("52", "0000") +
		emv("53", "986") +
		emv("54", amount.StringFixed(2)) +
		emv("58", "BR") +
		emv("59", ascii(p.Merchant, 25)) +
		emv("60", ascii(p.City, 15)) +
		emv("62", emv("05", ref)) +
		"6304"
	return payload + fmt.Sprintf("%04X", crc16(payload))
}

func (p *Pix) Charge(amount decimal.Decimal, txid string) (*PixCharge, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	payload := p.Payload(amount, txid)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	return &PixCharge{
		Payload: payload,
		QRCode:  "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	}, nil
}

// crc16 é o CRC-16/CCITT-FALSE exigido pelo BR Code (poly 0x1021, init 0xFFFF).
func crc16(s string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(s); i++ {
		crc ^= uint16(s[i]) << 8
		for b := 0; b < 8; b++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
