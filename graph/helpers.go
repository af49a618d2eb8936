package graph

import (
	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/auth"
)

// id из GraphQL Int в ключ хранилища
func toLinkID(id int) (uint, error) {
	if id <= 0 {
		return 0, apperr.NotFound("link %d not found", id)
	}
	return uint(id), nil
}

func authPayload(u *model.User) (*model.AuthPayload, error) {
	token, err := auth.IssueToken(uint(u.ID), u.Name)
	if err != nil {
		return nil, err
	}
	return &model.AuthPayload{Token: token, User: u}, nil
}
