package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domuser "github.com/arimulian/Revamp-Codeid-sales/internal/domain/user"
)

// JWTService verifies HS256 bearer tokens minted by the identity service.
// GenerateToken exists for tooling and tests that need a token of the same
// shape.
type JWTService struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTService(secret string, expiration time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

type jwtClaims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

func (s *JWTService) GenerateToken(u *domuser.User) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		UserID: u.ID,
		Name:   u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) ParseToken(token string) (*domuser.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domuser.ErrUnauthorized, err)
	}

	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return nil, domuser.ErrUnauthorized
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing uid claim", domuser.ErrUnauthorized)
	}

	return &domuser.Claims{
		UserID: claims.UserID,
		Name:   claims.Name,
	}, nil
}
