// Package session implementa la máquina de estados de sesión y rol:
//
//	Resolving → LoggedOut | UserMode | AdminDirectory | AdminEditOverride
//
// Cada estado lleva solo los datos que necesita. El modo de edición delegada
// (admin editando la factura de otro usuario) sustituye la capacidad de
// escritura del sincronizador: en vez del borrador de la cuenta, se
// sobrescribe el registro de historial original.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Facturador-api/internal/application/document"
	"github.com/jhoicas/Facturador-api/internal/application/drafting"
	"github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
	"github.com/jhoicas/Facturador-api/pkg/logger"
)

// Mode estados de la máquina. Resolving no se materializa: Resolve es síncrono
// y siempre termina en uno de estos.
type Mode string

const (
	ModeLoggedOut     Mode = "logged_out"
	ModeUser          Mode = "user"
	ModeAdminDir      Mode = "admin_directory"
	ModeAdminOverride Mode = "admin_edit_override"
)

// State resultado de una resolución de sesión.
type State struct {
	Mode      Mode
	AccountID string
	Profile   *entity.Profile
	Document  *entity.Document // inicial en UserMode; seed del registro en override
}

// OverrideState sesión de edición delegada activa.
type OverrideState struct {
	ID        string // identificador de la sesión de override
	AdminID   string
	AccountID string // dueño del registro
	RecordID  string
	Document  *entity.Document
}

type userSession struct {
	doc  *entity.Document
	sync *drafting.Synchronizer
}

type overrideSession struct {
	adminID   string
	accountID string
	recordID  string
	doc       *entity.Document
	sync      *drafting.Synchronizer
}

// Router resuelve identidad y rol, mantiene las sesiones vivas y arbitra las
// transiciones. Sustituye el branching por rol disperso por un punto único.
type Router struct {
	profiles repository.ProfileRepository
	drafts   repository.DraftRepository
	history  *history.UseCase
	debounce time.Duration
	log      *logger.Logger

	mu        sync.Mutex
	users     map[string]*userSession     // por accountID
	overrides map[string]*overrideSession // por override ID
}

// NewRouter construye el router con sus colaboradores.
func NewRouter(
	profiles repository.ProfileRepository,
	drafts repository.DraftRepository,
	historyUC *history.UseCase,
	debounce time.Duration,
	log *logger.Logger,
) *Router {
	return &Router{
		profiles:  profiles,
		drafts:    drafts,
		history:   historyUC,
		debounce:  debounce,
		log:       log,
		users:     make(map[string]*userSession),
		overrides: make(map[string]*overrideSession),
	}
}

// Resolve determina el estado de sesión para una identidad autenticada.
// Sin identidad → LoggedOut. Rol admin → AdminDirectory. Rol user (o perfil
// inexistente, que se crea aquí con rol user — única ruta de creación de
// perfil en la resolución) → UserMode con el borrador como documento inicial.
func (r *Router) Resolve(ctx context.Context, accountID, email string) (*State, error) {
	if accountID == "" {
		return &State{Mode: ModeLoggedOut}, nil
	}

	profile, err := r.profiles.Get(accountID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		now := time.Now()
		profile = &entity.Profile{
			AccountID:   accountID,
			Email:       email,
			Role:        entity.RoleUser,
			DisplayName: "New Nursery",
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := r.profiles.Create(profile); err != nil {
			return nil, err
		}
		r.log.Info().Str("account_id", accountID).Msg("perfil creado en primera resolución")
	}

	if profile.IsAdmin() {
		return &State{Mode: ModeAdminDir, AccountID: accountID, Profile: profile}, nil
	}

	doc, err := r.mountUserSession(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &State{Mode: ModeUser, AccountID: accountID, Profile: profile, Document: doc}, nil
}

// mountUserSession carga el borrador (con defaults por campo faltante) y
// asegura la sesión con su sincronizador escribiendo al slot de borrador.
func (r *Router) mountUserSession(ctx context.Context, accountID string) (*entity.Document, error) {
	r.mu.Lock()
	if s, ok := r.users[accountID]; ok {
		doc := s.doc
		r.mu.Unlock()
		return doc, nil
	}
	r.mu.Unlock()

	draft, err := r.drafts.Get(accountID)
	if err != nil {
		return nil, err
	}
	var doc *entity.Document
	if draft == nil {
		doc = document.Defaults()
	} else {
		doc = document.Decode(draft.Document)
	}

	write := func(ctx context.Context, d *entity.Document) error {
		blob, err := document.Encode(d)
		if err != nil {
			return err
		}
		return r.drafts.Set(&entity.Draft{
			AccountID: accountID,
			Document:  blob,
			UpdatedAt: time.Now(),
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.users[accountID]; ok {
		// Otra resolución concurrente montó primero; usar la suya.
		return s.doc, nil
	}
	r.users[accountID] = &userSession{
		doc:  doc,
		sync: drafting.New(r.debounce, write, r.log),
	}
	return doc, nil
}

// PushDocument registra un cambio del documento en modo usuario; el
// sincronizador coalesce y autoguarda.
func (r *Router) PushDocument(ctx context.Context, accountID string, doc *entity.Document) error {
	// El puntero al documento se publica bajo r.mu; Resolve lo lee bajo el
	// mismo lock y Fiber atiende peticiones de la misma cuenta en paralelo.
	r.mu.Lock()
	s, ok := r.users[accountID]
	if ok {
		s.doc = doc
	}
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.sync.Push(doc)
	return nil
}

// DraftStatus indicador de autoguardado de la sesión de usuario.
func (r *Router) DraftStatus(accountID string) (drafting.Status, error) {
	r.mu.Lock()
	s, ok := r.users[accountID]
	r.mu.Unlock()
	if !ok {
		return "", domain.ErrSessionNotFound
	}
	return s.sync.Status(), nil
}

// FlushDraft fuerza el autoguardado pendiente (hook operativo y de pruebas).
func (r *Router) FlushDraft(accountID string) error {
	r.mu.Lock()
	s, ok := r.users[accountID]
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.sync.Flush()
	return nil
}

// SignOut limpia todo el estado en memoria de la cuenta: sesión de usuario y
// cualquier override que haya abierto como admin. Los cambios no guardados se
// pierden.
func (r *Router) SignOut(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.users[accountID]; ok {
		s.sync.Stop()
		delete(r.users, accountID)
	}
	for id, o := range r.overrides {
		if o.adminID == accountID {
			o.sync.Stop()
			delete(r.overrides, id)
		}
	}
}

// EnterOverride abre la edición delegada de un registro ajeno. El documento
// se siembra desde el blob del registro y la capacidad de escritura del
// sincronizador pasa a sobrescribir ese registro (update-fields), nunca el
// borrador de nadie.
func (r *Router) EnterOverride(ctx context.Context, adminID, accountID, recordID string) (*OverrideState, error) {
	admin, err := r.profiles.Get(adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	doc, err := r.history.Load(ctx, accountID, recordID)
	if err != nil {
		return nil, err
	}

	write := func(ctx context.Context, d *entity.Document) error {
		return r.history.Overwrite(ctx, accountID, recordID, d)
	}

	id := uuid.New().String()
	r.mu.Lock()
	r.overrides[id] = &overrideSession{
		adminID:   adminID,
		accountID: accountID,
		recordID:  recordID,
		doc:       doc,
		sync:      drafting.New(r.debounce, write, r.log),
	}
	r.mu.Unlock()

	r.log.Info().
		Str("admin_id", adminID).
		Str("account_id", accountID).
		Str("record_id", recordID).
		Msg("edición delegada iniciada")

	return &OverrideState{ID: id, AdminID: adminID, AccountID: accountID, RecordID: recordID, Document: doc}, nil
}

// PushOverride registra un cambio dentro de la edición delegada; el
// autoguardado va directo al registro original.
func (r *Router) PushOverride(overrideID, adminID string, doc *entity.Document) error {
	r.mu.Lock()
	o, ok := r.overrides[overrideID]
	if ok && o.adminID == adminID {
		o.doc = doc
	} else {
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	o.sync.Push(doc)
	return nil
}

// SaveOverride guardado explícito dentro del modo delegado: sobrescribe el
// registro original en el lugar. No anexa historial ni toca borradores.
func (r *Router) SaveOverride(ctx context.Context, overrideID, adminID string) error {
	// Snapshot bajo el lock: el documento puede estar siendo reemplazado por
	// un PushOverride concurrente.
	r.mu.Lock()
	o, ok := r.overrides[overrideID]
	if !ok || o.adminID != adminID {
		r.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	accountID, recordID, doc := o.accountID, o.recordID, o.doc
	r.mu.Unlock()
	return r.history.Overwrite(ctx, accountID, recordID, doc)
}

// ExitOverride vuelve al directorio admin. Lo pendiente sin guardar se
// descarta: salir no implica autoguardado.
func (r *Router) ExitOverride(overrideID, adminID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overrides[overrideID]
	if !ok || o.adminID != adminID {
		return domain.ErrSessionNotFound
	}
	o.sync.Stop()
	delete(r.overrides, overrideID)
	return nil
}

// OverrideStatus indicador de autoguardado de una sesión delegada.
func (r *Router) OverrideStatus(overrideID, adminID string) (drafting.Status, error) {
	o, err := r.override(overrideID, adminID)
	if err != nil {
		return "", err
	}
	return o.sync.Status(), nil
}

func (r *Router) override(overrideID, adminID string) (*overrideSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overrides[overrideID]
	if !ok || o.adminID != adminID {
		return nil, domain.ErrSessionNotFound
	}
	return o, nil
}
