package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturador-api/internal/application/admin"
	"github.com/jhoicas/Facturador-api/internal/application/auth"
	"github.com/jhoicas/Facturador-api/internal/application/history"
	"github.com/jhoicas/Facturador-api/internal/application/session"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
	apphttp "github.com/jhoicas/Facturador-api/internal/interfaces/http"
	"github.com/jhoicas/Facturador-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account // por ID
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*entity.Account)}
}

func (r *memAccountRepo) Create(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = a
	return nil
}

func (r *memAccountRepo) FindByID(id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id], nil
}

func (r *memAccountRepo) FindByEmail(email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[string]*entity.Profile)}
}

func (r *memProfileRepo) Get(accountID string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[accountID], nil
}

func (r *memProfileRepo) Create(p *entity.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.AccountID] = p
	return nil
}

func (r *memProfileRepo) List(excludeAccountID string) ([]*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Profile
	for id, p := range r.profiles {
		if id != excludeAccountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProfileRepo) Delete(accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, accountID)
	return nil
}

type memDraftRepo struct {
	mu     sync.Mutex
	drafts map[string]*entity.Draft
}

func newMemDraftRepo() *memDraftRepo {
	return &memDraftRepo{drafts: make(map[string]*entity.Draft)}
}

func (r *memDraftRepo) Get(accountID string) (*entity.Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drafts[accountID], nil
}

func (r *memDraftRepo) Set(d *entity.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.AccountID] = d
	return nil
}

func (r *memDraftRepo) has(accountID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.drafts[accountID]
	return ok
}

type memHistoryRepo struct {
	mu      sync.Mutex
	records map[string][]*entity.HistoryRecord // por accountID
	seq     int
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{records: make(map[string][]*entity.HistoryRecord)}
}

func (r *memHistoryRepo) Append(rec *entity.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if rec.ID == "" {
		rec.ID = "rec-" + time.Now().Format("150405") + "-" + string(rune('a'+r.seq))
	}
	r.records[rec.AccountID] = append(r.records[rec.AccountID], rec)
	return nil
}

func (r *memHistoryRepo) List(accountID string) ([]*entity.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.HistoryRecord(nil), r.records[accountID]...), nil
}

func (r *memHistoryRepo) Get(accountID, recordID string) (*entity.HistoryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records[accountID] {
		if rec.ID == recordID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memHistoryRepo) Update(accountID, recordID string, patch repository.HistoryRecordPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records[accountID] {
		if rec.ID == recordID {
			rec.InvoiceNo = patch.InvoiceNo
			rec.ClientName = patch.ClientName
			rec.Date = patch.Date
			rec.TotalAmount = patch.TotalAmount.Decimal
			rec.SearchKey = patch.SearchKey
			rec.FullState = patch.FullState
			return nil
		}
	}
	return nil
}

func (r *memHistoryRepo) Delete(accountID, recordID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	recs := r.records[accountID]
	for i, rec := range recs {
		if rec.ID == recordID {
			r.records[accountID] = append(recs[:i], recs[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memHistoryRepo) count(accountID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records[accountID])
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type apiFixture struct {
	app      *fiber.App
	accounts *memAccountRepo
	profiles *memProfileRepo
	drafts   *memDraftRepo
	history  *memHistoryRepo

	adminToken string
	adminID    string
	userToken  string
	userID     string
}

const testPassword = "super-secreta-123"

// newAPIFixture monta la API completa con repos en memoria, una cuenta admin
// y una cuenta user ya registradas y logueadas.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	f := &apiFixture{
		accounts: newMemAccountRepo(),
		profiles: newMemProfileRepo(),
		drafts:   newMemDraftRepo(),
		history:  newMemHistoryRepo(),
	}

	log := logger.Nop()
	authUC := auth.NewAuthUseCase(f.accounts, f.profiles, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})
	historyUC := history.NewUseCase(f.history, nil)
	// Debounce de una hora: en estos tests el guardado diferido solo debe
	// ocurrir vía flush explícito.
	sessionRouter := session.NewRouter(f.profiles, f.drafts, historyUC, time.Hour, log)
	directoryUC := admin.NewDirectoryUseCase(f.profiles, historyUC)

	f.app = fiber.New()
	apphttp.Router(f.app, apphttp.RouterDeps{
		AuthUC:        authUC,
		HistoryUC:     historyUC,
		SessionRouter: sessionRouter,
		DirectoryUC:   directoryUC,
		JWTSecret:     testJWTSecret,
	})

	f.adminID = f.seedAccount(t, "admin@example.com", entity.RoleAdmin)
	f.userID = f.seedAccount(t, "nursery@example.com", entity.RoleUser)
	f.adminToken = f.login(t, "admin@example.com")
	f.userToken = f.login(t, "nursery@example.com")
	return f
}

func (f *apiFixture) seedAccount(t *testing.T, email, role string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now()
	id := "acc-" + email
	require.NoError(t, f.accounts.Create(&entity.Account{
		ID: id, Email: email, PasswordHash: string(hash), CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, f.profiles.Create(&entity.Profile{
		AccountID: id, Email: email, Role: role, DisplayName: email, CreatedAt: now, UpdatedAt: now,
	}))
	return id
}

func (f *apiFixture) login(t *testing.T, email string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": email, "password": testPassword})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "login debe funcionar para %s", email)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// do lanza una petición con cuerpo JSON opcional y Bearer token opcional.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// documento mínimo válido para guardar en historial / borrador.
func sampleDocument(invoiceNo, clientName string) map[string]any {
	return map[string]any{
		"meta":       map[string]any{"number": invoiceNo, "date": "2026-08-28", "title": "INVOICE"},
		"client":     map[string]any{"name": clientName, "address": "Calle 1 # 2-3"},
		"visibility": map[string]any{"tax": false},
		"items": []map[string]any{
			{"id": "it-1", "qty": 2, "price": 10.5, "fields": map[string]string{"description": "Fern"}},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestSession_SinToken_LoggedOut(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/session", "", nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "logged_out", out["mode"], "sin token la sesión debe resolver a logged_out")
}

func TestSession_UsuarioRecibeDocumento(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/session", f.userToken, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Mode     string          `json:"mode"`
		Document json.RawMessage `json:"document"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "user", out.Mode)
	assert.NotEmpty(t, out.Document, "el modo user debe traer el documento inicial")
}

func TestSession_AdminVaAlDirectorio(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/session", f.adminToken, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Mode     string          `json:"mode"`
		Document json.RawMessage `json:"document"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "admin_directory", out.Mode)
	assert.Empty(t, out.Document, "el directorio admin no monta editor ni documento")
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrador
// ──────────────────────────────────────────────────────────────────────────────

func TestDraft_PushYFlushPersisten(t *testing.T) {
	f := newAPIFixture(t)
	// La sesión debe resolverse antes de poder empujar borradores.
	f.do(t, http.MethodGet, "/api/session", f.userToken, nil).Body.Close()

	resp := f.do(t, http.MethodPut, "/api/draft/", f.userToken, sampleDocument("INV-042", "Rosaleda"))
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.False(t, f.drafts.has(f.userID), "antes del flush la escritura sigue pendiente")

	resp = f.do(t, http.MethodPost, "/api/draft/flush", f.userToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, f.drafts.has(f.userID), "el flush debe persistir el borrador")
}

func TestDraft_SinSesionResuelta_Conflicto(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPut, "/api/draft/", f.userToken, sampleDocument("INV-001", "X"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestHistory_GuardarYListar(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/history/", f.userToken, sampleDocument("INV-007", "Jardín Central"))
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		ID          string `json:"id"`
		InvoiceNo   string `json:"invoiceNo"`
		TotalAmount string `json:"totalAmount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "INV-007", created.InvoiceNo)
	assert.Equal(t, "21.00", created.TotalAmount, "2 × 10.5 sin impuesto visible")

	list := f.do(t, http.MethodGet, "/api/history/", f.userToken, nil)
	defer list.Body.Close()
	require.Equal(t, http.StatusOK, list.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(list.Body).Decode(&rows))
	assert.Len(t, rows, 1)
}

func TestHistory_BorradoSinConfirmNoBorra(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPost, "/api/history/", f.userToken, sampleDocument("INV-010", "Vivero Sur"))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	require.Equal(t, 1, f.history.count(f.userID))

	// Sin confirm: rechazado y el registro sigue intacto.
	del := f.do(t, http.MethodDelete, "/api/history/"+created.ID, f.userToken, nil)
	del.Body.Close()
	assert.Equal(t, http.StatusConflict, del.StatusCode)
	assert.Equal(t, 1, f.history.count(f.userID), "sin confirmación no debe tocarse el historial")

	// Con confirm=true: borrado efectivo.
	del = f.do(t, http.MethodDelete, "/api/history/"+created.ID+"?confirm=true", f.userToken, nil)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)
	assert.Equal(t, 0, f.history.count(f.userID))
}

// ──────────────────────────────────────────────────────────────────────────────
// Registro y directorio admin
// ──────────────────────────────────────────────────────────────────────────────

func TestRegister_SoloAdmin(t *testing.T) {
	f := newAPIFixture(t)
	body := map[string]string{"email": "nuevo@example.com", "password": "otra-clave-larga"}

	resp := f.do(t, http.MethodPost, "/api/auth/register", f.userToken, body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "user no puede dar de alta cuentas")

	resp = f.do(t, http.MethodPost, "/api/auth/register", f.adminToken, body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Role        string `json:"role"`
		DisplayName string `json:"display_name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "user", created.Role, "el alta siempre produce rol user")
	assert.Equal(t, "New Nursery", created.DisplayName)
}

func TestAdminAccounts_ExcluyeAlPropio(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/api/admin/accounts", f.adminToken, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []struct {
		AccountID string `json:"account_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, f.userID, rows[0].AccountID, "el directorio lista a los demás, no al admin mismo")
}

func TestAdminAccounts_UserBloqueado(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/admin/accounts", f.userToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminDeleteAccount_NoCascadea(t *testing.T) {
	f := newAPIFixture(t)
	// El usuario guarda una factura antes de ser eliminado.
	f.do(t, http.MethodPost, "/api/history/", f.userToken, sampleDocument("INV-099", "Último")).Body.Close()

	resp := f.do(t, http.MethodDelete, "/api/admin/accounts/"+f.userID, f.adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	p, _ := f.profiles.Get(f.userID)
	assert.Nil(t, p, "el perfil debe desaparecer")
	assert.Equal(t, 1, f.history.count(f.userID), "el historial queda huérfano, no se borra en cascada")
}

func TestAdminDeleteAccount_PropiaProhibida(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodDelete, "/api/admin/accounts/"+f.adminID, f.adminToken, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Edición delegada (override)
// ──────────────────────────────────────────────────────────────────────────────

func TestOverride_GuardadoSobrescribeSinAnexar(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPost, "/api/history/", f.userToken, sampleDocument("INV-020", "Original"))
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()

	// Abrir override sobre el registro del usuario.
	enter := f.do(t, http.MethodPost, "/api/admin/override", f.adminToken,
		map[string]string{"account_id": f.userID, "record_id": created.ID})
	require.Equal(t, http.StatusCreated, enter.StatusCode)
	var ov struct {
		Mode       string `json:"mode"`
		OverrideID string `json:"override_id"`
	}
	require.NoError(t, json.NewDecoder(enter.Body).Decode(&ov))
	enter.Body.Close()
	assert.Equal(t, "admin_edit_override", ov.Mode)
	require.NotEmpty(t, ov.OverrideID)

	// Editar y guardar: el registro se sobrescribe en el lugar.
	push := f.do(t, http.MethodPut, "/api/admin/override/"+ov.OverrideID+"/document",
		f.adminToken, sampleDocument("INV-020", "Corregido"))
	push.Body.Close()
	require.Equal(t, http.StatusAccepted, push.StatusCode)

	save := f.do(t, http.MethodPost, "/api/admin/override/"+ov.OverrideID+"/save", f.adminToken, nil)
	save.Body.Close()
	require.Equal(t, http.StatusNoContent, save.StatusCode)

	assert.Equal(t, 1, f.history.count(f.userID), "el guardado delegado no debe anexar registros nuevos")
	rec, _ := f.history.Get(f.userID, created.ID)
	require.NotNil(t, rec)
	assert.Equal(t, "Corregido", rec.ClientName)

	// Salir de la sesión delegada.
	exit := f.do(t, http.MethodDelete, "/api/admin/override/"+ov.OverrideID, f.adminToken, nil)
	exit.Body.Close()
	assert.Equal(t, http.StatusNoContent, exit.StatusCode)
}

func TestOverride_RegistroInexistente(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPost, "/api/admin/override", f.adminToken,
		map[string]string{"account_id": f.userID, "record_id": "no-existe"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuerpos imparseables
// ──────────────────────────────────────────────────────────────────────────────

// Un cuerpo que no es un objeto JSON se rechaza con 400 sin crear nada: la
// decodificación tolerante es para blobs ya guardados, no para peticiones.
func TestHistory_CuerpoImparseableRechazado(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/history/", bytes.NewBufferString("esto no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.userToken)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, f.history.count(f.userID), "no debe crearse un registro por defecto")
}

func TestDraft_CuerpoImparseableRechazado(t *testing.T) {
	f := newAPIFixture(t)
	f.do(t, http.MethodGet, "/api/session", f.userToken, nil).Body.Close()

	for _, body := range []string{"garbage", "null", `[1,2,3]`} {
		req := httptest.NewRequest(http.MethodPut, "/api/draft/", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+f.userToken)
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cuerpo %q", body)
	}
}
