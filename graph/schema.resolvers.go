package graph

// This file will be automatically regenerated based on the schema, any resolver implementations
// will be copied through when generating and any unknown code will be moved to the end.

import (
	"context"
	"errors"

	"github.com/VitaminP8/linkfeed/graph/generated"
	"github.com/VitaminP8/linkfeed/graph/model"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/auth"
	"github.com/VitaminP8/linkfeed/internal/feed"
	"github.com/VitaminP8/linkfeed/internal/link"
)

// Post is the resolver for the post field.
func (r *mutationResolver) Post(ctx context.Context, description string, url string) (*model.Link, error) {
	session := auth.SessionFromContext(ctx)

	var postedBy *uint
	if r.PostRequiresAuth {
		userID, err := session.RequireUser()
		if err != nil {
			return nil, err
		}
		postedBy = &userID
	} else if userID, ok := session.UserID(); ok {
		postedBy = &userID
	}

	if description == "" || url == "" {
		return nil, apperr.Validation("description and url are required")
	}

	created, err := r.LinkStore.CreateLink(ctx, description, url, postedBy)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	if r.SubscriptionManager != nil {
		r.SubscriptionManager.PublishLink(created)
	}
	return created, nil
}

// Update is the resolver for the update field.
func (r *mutationResolver) Update(ctx context.Context, id int, description *string, url *string) (*model.Link, error) {
	linkID, err := toLinkID(id)
	if err != nil {
		return nil, err
	}
	if description != nil && *description == "" {
		return nil, apperr.Validation("description must not be empty")
	}
	if url != nil && *url == "" {
		return nil, apperr.Validation("url must not be empty")
	}

	updated, err := r.LinkStore.UpdateLink(ctx, linkID, link.Patch{
		Description: description,
		URL:         url,
	})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return updated, nil
}

// Delete is the resolver for the delete field.
func (r *mutationResolver) Delete(ctx context.Context, id int) (*model.Link, error) {
	linkID, err := toLinkID(id)
	if err != nil {
		return nil, err
	}

	deleted, err := r.LinkStore.DeleteLinkByID(ctx, linkID)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return deleted, nil
}

// Vote is the resolver for the vote field.
func (r *mutationResolver) Vote(ctx context.Context, linkID int) (*model.Vote, error) {
	userID, err := auth.SessionFromContext(ctx).RequireUser()
	if err != nil {
		return nil, err
	}

	id, err := toLinkID(linkID)
	if err != nil {
		return nil, err
	}

	vote, err := r.LinkStore.Vote(ctx, id, userID)
	if err != nil {
		return nil, apperr.Classify(err)
	}

	if r.SubscriptionManager != nil {
		r.SubscriptionManager.PublishVote(vote)
	}
	return vote, nil
}

// Signup is the resolver for the signup field.
func (r *mutationResolver) Signup(ctx context.Context, email string, password string, name string) (*model.AuthPayload, error) {
	u, err := r.UserStore.RegisterUser(ctx, name, email, password)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return authPayload(u)
}

// Login is the resolver for the login field.
func (r *mutationResolver) Login(ctx context.Context, email string, password string) (*model.AuthPayload, error) {
	u, err := r.UserStore.LoginUser(ctx, email, password)
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return authPayload(u)
}

// Feed is the resolver for the feed field.
func (r *queryResolver) Feed(ctx context.Context, filter *string, skip *int, take *int, orderBy []*model.LinkOrderByInput) (*model.Feed, error) {
	return feed.Resolve(ctx, r.LinkStore, feed.Args{
		Filter:  filter,
		Skip:    skip,
		Take:    take,
		OrderBy: orderBy,
	})
}

// Link is the resolver for the link field.
func (r *queryResolver) Link(ctx context.Context, id *int) (*model.Link, error) {
	if id == nil || *id <= 0 {
		return nil, nil
	}

	found, err := r.LinkStore.GetLinkByID(ctx, uint(*id))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return found, nil
}

// NewLink is the resolver for the newLink field.
func (r *subscriptionResolver) NewLink(ctx context.Context) (<-chan *model.Link, error) {
	if r.SubscriptionManager == nil {
		return nil, errors.New("subscriptions are not enabled")
	}

	ch, cancel := r.SubscriptionManager.SubscribeLinks()
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, nil
}

// NewVote is the resolver for the newVote field.
func (r *subscriptionResolver) NewVote(ctx context.Context) (<-chan *model.Vote, error) {
	if r.SubscriptionManager == nil {
		return nil, errors.New("subscriptions are not enabled")
	}

	ch, cancel := r.SubscriptionManager.SubscribeVotes()
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, nil
}

// Mutation returns generated.MutationResolver implementation.
func (r *Resolver) Mutation() generated.MutationResolver { return &mutationResolver{r} }

// Query returns generated.QueryResolver implementation.
func (r *Resolver) Query() generated.QueryResolver { return &queryResolver{r} }

// Subscription returns generated.SubscriptionResolver implementation.
func (r *Resolver) Subscription() generated.SubscriptionResolver { return &subscriptionResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
type subscriptionResolver struct{ *Resolver }
