package auth

import (
	"fmt"

	"github.com/jhoicas/Cotizaciones-api/internal/application/dto"
	"github.com/jhoicas/Cotizaciones-api/internal/domain"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// TokenUseCase emite tokens para una identidad simulada. La identidad real la provee un
// colaborador externo; este caso de uso solo se monta en desarrollo.
type TokenUseCase struct {
	jwtCfg JWTConfig
}

// NewTokenUseCase construye el caso de uso.
func NewTokenUseCase(jwtCfg JWTConfig) *TokenUseCase {
	return &TokenUseCase{jwtCfg: jwtCfg}
}

// Issue firma un token con user_id, company_id y role.
func (uc *TokenUseCase) Issue(in dto.TokenRequest) (*dto.TokenResponse, error) {
	ve := domain.NewValidationError()
	if in.UserID == "" {
		ve.Add("user_id", "es requerido")
	}
	switch in.Role {
	case entity.RoleSupplier, entity.RoleCompany, entity.RoleConsumer:
	default:
		ve.Add("role", "debe ser supplier, company o consumer")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, in.UserID, in.CompanyID, in.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, fmt.Errorf("firmar token: %w", err)
	}
	return &dto.TokenResponse{Token: token, ExpiresIn: uc.jwtCfg.ExpMinutes * 60}, nil
}
