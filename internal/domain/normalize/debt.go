package normalize

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hogarhub/core/internal/domain/entities"
)

// Accepted source keys per canonical debt field, first present alias wins.
var (
	debtIDAliases     = []string{"id", "_id"}
	debtTitleAliases  = []string{"title", "name", "descripcion"}
	debtAmountAliases = []string{"amount", "monto", "value"}
	debtTypeAliases   = []string{"type", "kind", "category"}
	debtDateAliases   = []string{"date", "fecha", "createdAt"}
)

func debtTypeFor(value any) entities.DebtType {
	if s, ok := value.(string); ok {
		switch strings.ToLower(s) {
		case "abono", "pago", "payment":
			return entities.DebtTypeAbono
		}
	}
	return entities.DebtTypeDeuda
}

func toNumber(value any) float64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0
		}
		return parsed
	}
	return 0
}

func toISODate(value any, now func() time.Time) string {
	switch v := value.(type) {
	case string:
		if v == "" {
			break
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
		if parsed, err := time.Parse("2006-01-02", v); err == nil {
			return parsed.UTC().Format(time.RFC3339)
		}
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case float64:
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0 {
			return time.UnixMilli(int64(v)).UTC().Format(time.RFC3339)
		}
	}
	return now().UTC().Format(time.RFC3339)
}

// NormalizeDebtEntry converts one raw ledger record. Returns nil when the
// record carries no id; unusable amounts coerce to 0 and unknown types to
// "deuda", so a malformed entry never sinks the whole batch.
func NormalizeDebtEntry(raw any) *entities.DebtEntry {
	return normalizeDebtEntryAt(raw, time.Now)
}

func normalizeDebtEntryAt(raw any, now func() time.Time) *entities.DebtEntry {
	m, ok := asMap(raw)
	if !ok {
		return nil
	}
	id := firstStringAlias(m, debtIDAliases)
	if id == "" {
		return nil
	}

	amountValue, _ := firstAlias(m, debtAmountAliases)
	typeValue, _ := firstAlias(m, debtTypeAliases)
	dateValue, _ := firstAlias(m, debtDateAliases)

	entry := &entities.DebtEntry{
		ID:     id,
		Title:  firstStringAlias(m, debtTitleAliases),
		Amount: toNumber(amountValue),
		Type:   debtTypeFor(typeValue),
		Date:   toISODate(dateValue, now),
	}
	if v, ok := m["createdAt"]; ok && v != nil {
		entry.CreatedAt = toISODate(v, now)
	}
	if v, ok := m["updatedAt"]; ok && v != nil {
		entry.UpdatedAt = toISODate(v, now)
	}
	if s, ok := m["notes"].(string); ok {
		entry.Notes = s
	} else if s, ok := m["descripcion"].(string); ok {
		entry.Notes = s
	}
	return entry
}

// SortDebtEntries orders entries newest first by date, tie-broken by
// createdAt descending. Returns a new slice.
func SortDebtEntries(entries []entities.DebtEntry) []entities.DebtEntry {
	out := append([]entities.DebtEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// ComputeDebtBalance folds the entry set into the derived balance. A positive
// balance means money owed, negative means credit in the user's favor.
func ComputeDebtBalance(entries []entities.DebtEntry) entities.DebtBalance {
	var balance entities.DebtBalance
	for _, entry := range entries {
		if entry.Type == entities.DebtTypeAbono {
			balance.TotalAbonos += entry.Amount
			balance.Balance -= entry.Amount
		} else {
			balance.TotalDeudas += entry.Amount
			balance.Balance += entry.Amount
		}
	}
	return balance
}
