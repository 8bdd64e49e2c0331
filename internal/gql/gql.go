// Package gql assembles the GraphQL schema code-first: object types
// carry resolvers bound to the service layer, and the viewer travels in
// the request context.
package gql

import (
	"github.com/graphql-go/graphql"
	"github.com/techgyan/techgyan-backend/internal/broadcast"
	"github.com/techgyan/techgyan-backend/internal/relay"
	"github.com/techgyan/techgyan-backend/internal/services"
	"gorm.io/gorm"
)

// Deps carries everything the schema resolvers need.
type Deps struct {
	DB       *gorm.DB
	Creators *services.CreatorService
	Stories  *services.StoryService
	Posts    *services.PostService
	Images   *services.ImageService
	Hub      *broadcast.Hub
}

type builder struct {
	Deps

	userType         *graphql.Object
	imageType        *graphql.Object
	tagType          *graphql.Object
	categoryType     *graphql.Object
	creatorType      *graphql.Object
	storyType        *graphql.Object
	storyCommentType *graphql.Object
	postType         *graphql.Object
	postCommentType  *graphql.Object
	pollType         *graphql.Object
	pollOptionType   *graphql.Object
	postImageType    *graphql.Object
	eventType        *graphql.Object

	pageInfoType *graphql.Object

	imageInputType      *graphql.InputObject
	socialLinkInputType *graphql.InputObject
}

// New builds the executable schema.
func New(deps Deps) (graphql.Schema, error) {
	b := &builder{Deps: deps}
	b.buildTypes()

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:        b.queryType(),
		Mutation:     b.mutationType(),
		Subscription: b.subscriptionType(),
	})
}

// strArg returns a string argument as a pointer, nil when absent.
func strArg(p graphql.ResolveParams, name string) *string {
	if v, ok := p.Args[name].(string); ok {
		return &v
	}
	return nil
}

func intArg(p graphql.ResolveParams, name string) *int {
	if v, ok := p.Args[name].(int); ok {
		return &v
	}
	return nil
}

func boolArg(p graphql.ResolveParams, name string) *bool {
	if v, ok := p.Args[name].(bool); ok {
		return &v
	}
	return nil
}

func strListArg(p graphql.ResolveParams, name string) []string {
	raw, ok := p.Args[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// connectionArgs are the standard relay pagination arguments.
var connectionArgs = graphql.FieldConfigArgument{
	"first":  &graphql.ArgumentConfig{Type: graphql.Int},
	"after":  &graphql.ArgumentConfig{Type: graphql.String},
	"last":   &graphql.ArgumentConfig{Type: graphql.Int},
	"before": &graphql.ArgumentConfig{Type: graphql.String},
}

func pageArgs(p graphql.ResolveParams) relay.Args {
	return relay.Args{
		First:  intArg(p, "first"),
		After:  strArg(p, "after"),
		Last:   intArg(p, "last"),
		Before: strArg(p, "before"),
	}
}

func mergeArgs(base graphql.FieldConfigArgument, extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	merged := graphql.FieldConfigArgument{}
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
