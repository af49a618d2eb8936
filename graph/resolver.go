package graph

import (
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/internal/subscription"
	"github.com/VitaminP8/linkfeed/internal/user"
)

//go:generate go run github.com/99designs/gqlgen generate

// Resolver служит корневой точкой для всех резолверов.
// Здесь внедряются зависимости: хранилища, менеджер подписок и политика доступа.
type Resolver struct {
	LinkStore           link.LinkStorage
	UserStore           user.UserStorage
	SubscriptionManager subscription.Manager

	PostRequiresAuth bool // post без логина запрещен
}
