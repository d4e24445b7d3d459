package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken создает токен с заданными данными пользователя,
// подписывая его секретным ключом. Время жизни определяется tokenTTL.
func (m *MakerImpl) GenerateToken(userID, tenantID, email, name string, roles []string) (string, error) {
	claims := Claims{
		ObjectID:          userID,
		TenantID:          tenantID,
		PreferredUsername: email,
		Name:              name,
		Roles:             roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// ParseToken парсит токен, проверяет его подпись, срок действия и аудиторию,
// возвращает AuthContext с данными пользователя, если токен корректен.
// Токен без идентификатора пользователя или арендатора считается невалидным.
func (m *MakerImpl) ParseToken(tokenStr string) (*AuthContext, error) {
	const op = "token.ParseToken"

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}

	userID := claims.ObjectID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" || claims.TenantID == "" {
		return nil, fmt.Errorf("%s: missing user or tenant claim", op)
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = claims.AppRoles
	}

	return &AuthContext{
		UserID:   userID,
		TenantID: claims.TenantID,
		Email:    claims.PreferredUsername,
		Name:     claims.Name,
		Roles:    roles,
	}, nil
}
