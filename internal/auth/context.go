// internal/auth/context.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userIDKey = contextKey("userID")

const tokenTTL = 72 * time.Hour

// Сохраняет userID в контексте
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Достает userID из контекста
func GetUserIDFromContext(ctx context.Context) (uint, error) {
	val := ctx.Value(userIDKey)
	id, ok := val.(uint)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return id, nil
}

// Session - то, что резолвер знает о текущем запросе.
// Все проверки "нужен логин" идут через RequireUser.
type Session struct {
	userID        uint
	authenticated bool
}

func SessionFromContext(ctx context.Context) Session {
	id, err := GetUserIDFromContext(ctx)
	if err != nil {
		return Session{}
	}
	return Session{userID: id, authenticated: true}
}

func (s Session) Authenticated() bool {
	return s.authenticated
}

// UserID возвращает id пользователя, если он есть
func (s Session) UserID() (uint, bool) {
	return s.userID, s.authenticated
}

func (s Session) RequireUser() (uint, error) {
	if !s.authenticated {
		return 0, apperr.Unauthorized("you must be logged in")
	}
	return s.userID, nil
}

// IssueToken подписывает JWT для пользователя секретом из JWT_SECRET
func IssueToken(userID uint, name string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set in environment")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"name":    name,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Для извлечения userID из JWT и помещения в context
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := extractTokenFromHeader(r.Header.Get("Authorization"))
		if tokenStr == "" {
			next.ServeHTTP(w, r) // неавторизованный доступ, пропускаем
			return
		}

		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			http.Error(w, "JWT secret not set", http.StatusInternalServerError)
			return
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			next.ServeHTTP(w, r) // если невалидный токен, пропускаем
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		idFloat, ok := claims["user_id"].(float64)
		if !ok || idFloat <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := WithUserID(r.Context(), uint(idFloat))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractTokenFromHeader(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
