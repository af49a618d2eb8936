package user

import (
	"context"

	"github.com/VitaminP8/linkfeed/graph/model"
)

type UserStorage interface {
	RegisterUser(ctx context.Context, name, email, password string) (*model.User, error)
	LoginUser(ctx context.Context, email, password string) (*model.User, error) // проверяет пароль
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}
