package subscription

import "github.com/VitaminP8/linkfeed/graph/model"

type Manager interface {
	SubscribeLinks() (<-chan *model.Link, func())
	PublishLink(link *model.Link)
	SubscribeVotes() (<-chan *model.Vote, func())
	PublishVote(vote *model.Vote)
}
