package gql

import (
	"github.com/graphql-go/graphql"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

func (b *builder) subscriptionType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Subscription",
		Fields: graphql.Fields{
			// contentEvents streams activity notifications for the named
			// topics ("story:<key>", "post:<key>"). A client never
			// receives echoes of its own actions.
			"contentEvents": &graphql.Field{
				Type: b.eventType,
				Args: graphql.FieldConfigArgument{
					"topics": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String))),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source, nil
				},
				Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
					topics := strListArg(p, "topics")
					if len(topics) == 0 {
						return nil, apperr.Validation("at least one topic is required")
					}

					v := viewer.FromContext(p.Context)
					self := v.Key()
					filter := func(ev broadcast.Event) (broadcast.Event, bool) {
						if self != "" && ev.ActorKey == self {
							return ev, false
						}
						return ev, true
					}

					events := b.Hub.Subscribe(p.Context, topics, filter)
					out := make(chan interface{})
					go func() {
						defer close(out)
						for ev := range events {
							select {
							case out <- ev:
							case <-p.Context.Done():
								return
							}
						}
					}()
					return out, nil
				},
			},
		},
	})
}
