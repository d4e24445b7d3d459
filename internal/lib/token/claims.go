// Package token реализует генерацию и проверку bearer-токенов с claim-полями арендатора.
//
// Claims расширяет стандартные claims JWT полями идентификатора арендатора,
// почты, отображаемого имени и ролей. Роли могут приходить в двух claim-полях,
// первое непустое выигрывает.
//
// Maker определяет интерфейс для создания и проверки токенов.
// MakerImpl — конкретная реализация с секретным ключом, ожидаемой
// аудиторией и сроком жизни токена.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся в bearer-токене портала.
type Claims struct {
	ObjectID             string   `json:"oid,omitempty"`                // Идентификатор пользователя, приоритетнее sub
	TenantID             string   `json:"tid"`                          // Идентификатор арендатора
	PreferredUsername    string   `json:"preferred_username,omitempty"` // Почта пользователя
	Name                 string   `json:"name,omitempty"`               // Отображаемое имя
	Roles                []string `json:"roles,omitempty"`              // Основное claim-поле ролей
	AppRoles             []string `json:"appRoles,omitempty"`           // Альтернативное claim-поле ролей
	jwt.RegisteredClaims          // Встроенные стандартные claims JWT (ExpiresAt, Audience и пр.)
}

// AuthContext — результат разбора токена, прокидывается в контекст запроса.
type AuthContext struct {
	UserID   string
	TenantID string
	Email    string
	Name     string
	Roles    []string
}

// Maker описывает интерфейс для генерации и проверки токенов.
type Maker interface {
	// GenerateToken создаёт токен с данными пользователя и арендатора
	GenerateToken(userID, tenantID, email, name string, roles []string) (string, error)
	// ParseToken возвращает *AuthContext, если токен корректен
	ParseToken(tokenStr string) (*AuthContext, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа,
// ожидаемой аудитории и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	audience  string        // Ожидаемая аудитория, пустая строка отключает проверку.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl.
func NewMaker(secretKey, audience string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		audience:  audience,
		tokenTTL:  ttl,
	}
}
