package ledger

import "papertrade/internal/domain"

// journal is the append-only record of committed trades, insertion order
// significant. It has no query surface beyond append, snapshot and clear.
type journal struct {
	records []domain.TradeRecord
}

func (j *journal) append(r domain.TradeRecord) {
	j.records = append(j.records, r)
}

// snapshot returns a copy so callers never observe later appends.
func (j *journal) snapshot() []domain.TradeRecord {
	out := make([]domain.TradeRecord, len(j.records))
	copy(out, j.records)
	return out
}

func (j *journal) clear() {
	j.records = nil
}
