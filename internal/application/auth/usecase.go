package auth

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Facturador-api/internal/application/dto"
	"github.com/jhoicas/Facturador-api/internal/domain"
	"github.com/jhoicas/Facturador-api/internal/domain/entity"
	"github.com/jhoicas/Facturador-api/internal/domain/repository"
	"github.com/jhoicas/Facturador-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: login y alta de cuentas.
type AuthUseCase struct {
	accountRepo repository.AccountRepository
	profileRepo repository.ProfileRepository
	jwtCfg      JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(accountRepo repository.AccountRepository, profileRepo repository.ProfileRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{accountRepo: accountRepo, profileRepo: profileRepo, jwtCfg: jwtCfg}
}

// Login verifica email/password, genera JWT y retorna token + perfil.
// Si la cuenta aún no tiene perfil, el token sale con rol user; el perfil se
// crea al resolver la sesión, no aquí.
func (uc *AuthUseCase) Login(in dto.LoginRequest) (*dto.LoginResponse, error) {
	account, err := uc.accountRepo.FindByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	profile, err := uc.profileRepo.Get(account.ID)
	if err != nil {
		return nil, err
	}
	role := entity.RoleUser
	displayName := ""
	if profile != nil {
		role = profile.Role
		displayName = profile.DisplayName
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, account.ID, account.Email, role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		Profile: dto.ProfileResponse{
			AccountID:   account.ID,
			Email:       account.Email,
			Role:        role,
			DisplayName: displayName,
			CreatedAt:   account.CreatedAt,
		},
	}, nil
}

// Register crea una cuenta nueva con su perfil en rol user (flujo de alta
// desde el directorio admin). El rol nunca viene del cliente: admin se
// asigna fuera de banda, directamente en la base.
func (uc *AuthUseCase) Register(in dto.RegisterRequest) (*dto.ProfileResponse, error) {
	existing, err := uc.accountRepo.FindByEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	account := &entity.Account{
		ID:           uuid.New().String(),
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.accountRepo.Create(account); err != nil {
		return nil, err
	}

	displayName := in.DisplayName
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	profile := &entity.Profile{
		AccountID:   account.ID,
		Email:       account.Email,
		Role:        entity.RoleUser,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.profileRepo.Create(profile); err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		AccountID:   profile.AccountID,
		Email:       profile.Email,
		Role:        profile.Role,
		DisplayName: profile.DisplayName,
		CreatedAt:   profile.CreatedAt,
	}, nil
}

// DefaultDisplayName nombre por defecto de una cuenta recién creada.
const DefaultDisplayName = "New Nursery"
