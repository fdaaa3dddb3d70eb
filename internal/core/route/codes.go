package route

import (
	"fmt"
	"math/rand/v2"

	"github.com/example/routecard/internal/models"
)

const (
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codePrefix   = "OP-"
	maxAttempts  = 1000
)

// CodeGenerator produces candidate operation codes.
type CodeGenerator func() string

// RandomCode returns "OP-" followed by 4 random alphanumerics.
func RandomCode() string {
	b := make([]byte, 4)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return codePrefix + string(b)
}

// UniqueCode draws codes from gen until one is not in used, giving up
// after 1000 attempts. The returned code is added to used.
func UniqueCode(used map[string]bool, gen CodeGenerator) string {
	if gen == nil {
		gen = RandomCode
	}
	code := gen()
	for attempt := 0; (code == "" || used[code]) && attempt < maxAttempts; attempt++ {
		code = gen()
	}
	used[code] = true
	return code
}

// UsedCodes collects every code in the catalog and in every card's route.
func UsedCodes(col *models.Collection) map[string]bool {
	used := make(map[string]bool)
	for _, op := range col.Ops {
		if op.Code != "" {
			used[op.Code] = true
		}
	}
	for _, card := range col.Cards {
		for _, op := range card.Operations {
			if op.OpCode != "" {
				used[op.OpCode] = true
			}
		}
	}
	return used
}

// EnsureCodes gives every catalog entry a unique code and every route step
// a code: auto-coded steps are left to RenumberAutoCodes, steps linked to a
// catalog entry take its code, the rest get a fresh unique code.
// It returns the number of codes assigned or changed.
func EnsureCodes(col *models.Collection, gen CodeGenerator) int {
	used := UsedCodes(col)
	changed := 0

	seen := make(map[string]bool, len(col.Ops))
	for _, op := range col.Ops {
		if op.Code == "" || seen[op.Code] {
			op.Code = UniqueCode(used, gen)
			changed++
		}
		seen[op.Code] = true
	}

	byID := make(map[string]*models.OpCatalogEntry, len(col.Ops))
	for _, op := range col.Ops {
		byID[op.ID] = op
	}
	for _, card := range col.Cards {
		for _, step := range card.Operations {
			if step.AutoCode {
				continue
			}
			if src, ok := byID[step.OpID]; ok && src.Code != "" {
				if step.OpCode != src.Code {
					step.OpCode = src.Code
					changed++
				}
				continue
			}
			if step.OpCode == "" {
				step.OpCode = UniqueCode(used, gen)
				changed++
			}
		}
	}
	return changed
}

// FormatStepCode renders the auto code of the n-th auto-coded step: 005, 010, ...
func FormatStepCode(n int) string {
	return fmt.Sprintf("%03d", n*5)
}

// RenumberAutoCodes assigns sequential codes to auto-coded steps in route order.
func RenumberAutoCodes(card *models.Card) {
	n := 0
	for _, op := range Sorted(card.Operations) {
		if op.AutoCode {
			n++
			op.OpCode = FormatStepCode(n)
		}
	}
}
