// Package drafting implementa el sincronizador de borradores: observa los
// cambios del documento de una sesión y empuja un snapshot coalescido al
// Persistence Gateway cuando el usuario hace una pausa.
package drafting

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/pkg/logger"
)

// WriteFunc es la capacidad de escritura del sincronizador. Se inyecta según
// el modo de la sesión: en modo usuario escribe el borrador de la cuenta; en
// modo de edición delegada sobrescribe el registro de historial original.
type WriteFunc func(ctx context.Context, doc *entity.Document) error

// Status indicador derivado para la UI. No garantiza nada: la escritura es
// fire-and-forget y los errores se registran, no se reintentan.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
)

// Synchronizer coalesce ráfagas de cambios en una sola escritura: cada Push
// reinicia la ventana; al vencer sin más cambios se escribe el último
// snapshot. Las ediciones que llegan durante una escritura en vuelo quedan
// para la siguiente ventana, no se inyectan en la que ya partió.
type Synchronizer struct {
	mu      sync.Mutex
	delay   time.Duration
	write   WriteFunc
	log     *logger.Logger
	timer   *time.Timer
	pending *entity.Document
	status  Status
	stopped bool
}

// New construye el sincronizador. write puede ser nil: el sincronizador se
// vuelve un no-op silencioso (modo sin capacidad de escritura).
func New(delay time.Duration, write WriteFunc, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		delay:  delay,
		write:  write,
		log:    log,
		status: StatusIdle,
	}
}

// Push registra un cambio del documento y reinicia la ventana de coalescencia.
func (s *Synchronizer) Push(doc *entity.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.write == nil {
		return
	}
	s.pending = doc.Clone()
	s.status = StatusSaving
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Flush fuerza la escritura del snapshot pendiente sin esperar la ventana.
func (s *Synchronizer) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.fire()
}

// Status devuelve el indicador actual.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SetWrite sustituye la capacidad de escritura (entrada/salida del modo de
// edición delegada). Descarta cualquier snapshot pendiente del modo anterior.
func (s *Synchronizer) SetWrite(write WriteFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.write = write
	s.status = StatusIdle
}

// Stop detiene el sincronizador descartando lo pendiente. Los cambios no
// guardados al salir de una sesión se pierden, no hay autoguardado implícito.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

// fire toma el snapshot pendiente y lo escribe. Sin cancelación de escrituras
// en vuelo: si dos se cruzan, gana la que complete de última en el storage.
func (s *Synchronizer) fire() {
	s.mu.Lock()
	doc := s.pending
	s.pending = nil
	write := s.write
	stopped := s.stopped
	s.mu.Unlock()

	if doc == nil || write == nil || stopped {
		return
	}

	if err := write(context.Background(), doc); err != nil {
		// Autoguardado fire-and-forget: se registra y se sigue, sin reintento.
		s.log.Error().Err(err).Msg("autoguardado de borrador falló")
		s.mu.Lock()
		if s.pending == nil {
			s.status = StatusIdle
		}
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	// Si entró otro cambio mientras escribíamos, seguimos en saving.
	if s.pending == nil {
		s.status = StatusSaved
	}
	s.mu.Unlock()
}
