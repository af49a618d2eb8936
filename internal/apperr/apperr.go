package apperr

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Виды ошибок, которые видит клиент. Конкретные ошибки оборачивают их через %w.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrStore        = errors.New("store error")
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeStore        = "STORE_ERROR"
)

// Validation, Unauthorized, NotFound - короткие конструкторы для резолверов и хранилищ
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Store оборачивает ошибку драйвера БД
func Store(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

// Code возвращает код вида ошибки или пустую строку, если ошибка не классифицирована
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrStore):
		return CodeStore
	}
	return ""
}

// Classify помечает неклассифицированную ошибку хранилища как ErrStore.
// Уже классифицированные ошибки возвращаются как есть.
func Classify(err error) error {
	if err == nil || Code(err) != "" {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// Presenter - ErrorPresenter для gqlgen, добавляет extensions.code
func Presenter(ctx context.Context, err error) *gqlerror.Error {
	gqlErr := graphql.DefaultErrorPresenter(ctx, err)

	code := Code(err)
	if code == "" {
		return gqlErr
	}
	if code == CodeStore {
		log.Printf("store error: %v", err)
	}

	if gqlErr.Extensions == nil {
		gqlErr.Extensions = make(map[string]interface{})
	}
	gqlErr.Extensions["code"] = code
	return gqlErr
}
