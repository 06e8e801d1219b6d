package entity

import "time"

// PeriodLock cierre de período global: ningún documento con fecha menor o igual
// a LockedThrough puede contabilizarse ni descontabilizarse.
type PeriodLock struct {
	LockedThrough time.Time
	UpdatedAt     time.Time
}

// Covers indica si la fecha dada cae dentro del período cerrado.
func (l *PeriodLock) Covers(date time.Time) bool {
	if l == nil {
		return false
	}
	return !date.After(l.LockedThrough)
}
