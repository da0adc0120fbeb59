package engine

import (
	"time"

	"github.com/alejandrodnm/optionswing/internal/domain"
)

// Session es el estado mutable del día de trading: el universo vigente y el
// set de opciones ya compradas hoy. Lo posee el loop del engine y solo se
// accede desde ese goroutine, así que no necesita locking. Se pierde al
// reiniciar el proceso; el dedup es por vida del proceso, no durable.
type Session struct {
	day       time.Time // fecha UTC del día en curso
	universe  domain.Universe
	purchased map[string]struct{}
}

// NewSession crea una sesión vacía para el día de now.
func NewSession(now time.Time) *Session {
	return &Session{
		day:       dateUTC(now),
		purchased: make(map[string]struct{}),
	}
}

// AlreadyPurchased devuelve true si el contrato ya se compró hoy.
func (s *Session) AlreadyPurchased(symbol string) bool {
	_, ok := s.purchased[symbol]
	return ok
}

// MarkPurchased registra una compra del día. Solo se llama tras un submit
// aceptado por el broker.
func (s *Session) MarkPurchased(symbol string) {
	s.purchased[symbol] = struct{}{}
}

// PurchasedCount devuelve cuántos contratos distintos se compraron hoy.
func (s *Session) PurchasedCount() int {
	return len(s.purchased)
}

// SetUniverse reemplaza el universo por completo, sin merge.
func (s *Session) SetUniverse(u domain.Universe) {
	s.universe = u
}

// Universe devuelve el universo vigente.
func (s *Session) Universe() domain.Universe {
	return s.universe
}

// SameDay devuelve true si now cae en el mismo día UTC que la sesión.
func (s *Session) SameDay(now time.Time) bool {
	return dateUTC(now).Equal(s.day)
}

// Reset limpia el set de compras y el universo al cruzar el día.
// Es la única vía por la que un símbolo comprado vuelve a ser comprable.
func (s *Session) Reset(now time.Time) {
	s.day = dateUTC(now)
	s.universe = nil
	s.purchased = make(map[string]struct{})
}

func dateUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
