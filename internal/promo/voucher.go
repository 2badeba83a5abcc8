package promo

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/and161185/neverland-admin/internal/model"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateVoucherCode builds PREFIX(3) + RANDOM(6) + SUFFIX.
// PREFIX is the first three alphanumerics of name, SUFFIX the tail of id zero-padded to three.
func GenerateVoucherCode(rng *rand.Rand, name, id string) string {
	var b strings.Builder
	b.WriteString(prefixOf(name))
	for range 6 {
		b.WriteByte(base36[rng.IntN(len(base36))])
	}
	b.WriteString(suffixOf(id))
	return b.String()
}

func alnumUpper(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
		}
	}
	return out
}

func prefixOf(name string) string {
	r := alnumUpper(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

func suffixOf(id string) string {
	r := alnumUpper(id)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	s := string(r)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// VoucherBook hands out one stable code per flash sale id.
type VoucherBook struct {
	mu    sync.Mutex
	rng   *rand.Rand
	codes map[string]string
}

// NewVoucherBook seeds the code generator; a zero seed uses the current time.
func NewVoucherBook(seed uint64) *VoucherBook {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &VoucherBook{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		codes: map[string]string{},
	}
}

// CodeFor returns the code of sale, generating it on first use.
func (v *VoucherBook) CodeFor(sale model.FlashSale) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if c, ok := v.codes[sale.ID]; ok {
		return c
	}
	c := GenerateVoucherCode(v.rng, sale.Name, sale.ID)
	v.codes[sale.ID] = c
	return c
}

// Codes returns codes for all sales in order, generating missing ones.
func (v *VoucherBook) Codes(sales []model.FlashSale) map[string]string {
	out := make(map[string]string, len(sales))
	for _, s := range sales {
		out[s.ID] = v.CodeFor(s)
	}
	return out
}
