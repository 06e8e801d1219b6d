package entity

import "time"

// Tipos de documento contabilizables (valor de recorder_type en los registros).
const (
	DocTypeEstimate    = "estimate"     // presupuesto de obra
	DocTypeDailyReport = "daily_report" // parte diario de obra
	DocTypeTimesheet   = "timesheet"    // planilla de horas
)

// PostingState estado de contabilización compartido por todos los documentos.
// Invariante: IsPosted == false implica cero movimientos en los registros.
type PostingState struct {
	IsPosted bool
	PostedAt *time.Time
}

// MarkPosted marca el documento como contabilizado en el instante dado.
func (s *PostingState) MarkPosted(at time.Time) {
	s.IsPosted = true
	s.PostedAt = &at
}

// MarkUnposted limpia el estado de contabilización.
func (s *PostingState) MarkUnposted() {
	s.IsPosted = false
	s.PostedAt = nil
}

// CanModify indica si el documento admite edición. Un documento contabilizado
// no se edita: primero se descontabiliza.
func (s *PostingState) CanModify() bool {
	return !s.IsPosted
}
