package gql

import (
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/techgyan/techgyan-backend/internal/apperr"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/relay"
	"github.com/techgyan/techgyan-backend/internal/viewer"
	"gorm.io/gorm"
)

func (b *builder) queryType() *graphql.Object {
	storyConn := b.connectionType("Story", b.storyType)
	postConn := b.connectionType("Post", b.postType)
	creatorConn := b.connectionType("Creator", b.creatorType)
	storyCommentConn := b.connectionType("RootStoryComment", b.storyCommentType)
	postCommentConn := b.connectionType("RootPostComment", b.postCommentType)

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: b.userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := viewer.FromContext(p.Context)
					if !v.Authenticated() {
						return nil, nil
					}
					return v.User, nil
				},
			},

			"user": &graphql.Field{
				Type: b.userType,
				Args: graphql.FieldConfigArgument{
					"username": &graphql.ArgumentConfig{Type: graphql.String},
					"key":      &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var u models.User
					if key := strArg(p, "key"); key != nil {
						if err := b.DB.First(&u, "key = ?", *key).Error; err != nil {
							return nil, apperr.NotFound("user %q not found", *key)
						}
						return &u, nil
					}
					if username := strArg(p, "username"); username != nil {
						if err := b.DB.First(&u, "username = ?", *username).Error; err != nil {
							return nil, apperr.NotFound("user %q not found", *username)
						}
						return &u, nil
					}
					return nil, apperr.Validation("user requires a key or a username")
				},
			},

			"users": &graphql.Field{
				Type: b.connectionType("User", b.userType),
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"usernameContains": &graphql.ArgumentConfig{Type: graphql.String},
					"emailContains":    &graphql.ArgumentConfig{Type: graphql.String},
					"orderBy":          &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := b.DB.Model(&models.User{})
					q = containsFilter(q, "username", strArg(p, "usernameContains"))
					q = containsFilter(q, "email", strArg(p, "emailContains"))
					order, err := orderClause(p, map[string]string{
						"createdAt": "created_at",
						"username":  "username",
					}, "key", "created_at DESC, key")
					if err != nil {
						return nil, err
					}
					return relay.Paginate[models.User](q, order, pageArgs(p))
				},
			},

			"creator": &graphql.Field{
				Type: b.creatorType,
				Args: graphql.FieldConfigArgument{
					"key":    &graphql.ArgumentConfig{Type: graphql.ID},
					"handle": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if key := strArg(p, "key"); key != nil {
						return b.Creators.Get(*key)
					}
					if handle := strArg(p, "handle"); handle != nil {
						return b.Creators.GetByHandle(*handle)
					}
					return nil, apperr.Validation("creator requires a key or a handle")
				},
			},

			"creators": &graphql.Field{
				Type: creatorConn,
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"handleContains": &graphql.ArgumentConfig{Type: graphql.String},
					"nameContains":   &graphql.ArgumentConfig{Type: graphql.String},
					"orderBy":        &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := b.DB.Model(&models.Creator{}).Where("is_deleted = ?", false)
					q = containsFilter(q, "handle", strArg(p, "handleContains"))
					q = containsFilter(q, "name", strArg(p, "nameContains"))
					order, err := orderClause(p, map[string]string{
						"createdAt": "created_at",
						"name":      "name",
						"handle":    "handle",
					}, "key", "created_at DESC, key")
					if err != nil {
						return nil, err
					}
					return relay.Paginate[models.Creator](q, order, pageArgs(p))
				},
			},

			"myCreators": &graphql.Field{
				Type: graphql.NewList(b.creatorType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return b.Creators.Mine(viewer.FromContext(p.Context))
				},
			},

			"story": &graphql.Field{
				Type: b.storyType,
				Args: graphql.FieldConfigArgument{
					"key":  &graphql.ArgumentConfig{Type: graphql.ID},
					"slug": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if key := strArg(p, "key"); key != nil {
						return b.Stories.Get(*key)
					}
					if slug := strArg(p, "slug"); slug != nil {
						return b.Stories.GetBySlug(*slug)
					}
					return nil, apperr.Validation("story requires a key or a slug")
				},
			},

			"stories": &graphql.Field{
				Type: storyConn,
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"authorKey":      &graphql.ArgumentConfig{Type: graphql.ID},
					"state":          &graphql.ArgumentConfig{Type: graphql.String},
					"tag":            &graphql.ArgumentConfig{Type: graphql.String},
					"category":       &graphql.ArgumentConfig{Type: graphql.String},
					"titleContains":  &graphql.ArgumentConfig{Type: graphql.String},
					"slugContains":   &graphql.ArgumentConfig{Type: graphql.String},
					"includeDeleted": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"orderBy":        &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := b.storyListQuery(p)
					if err != nil {
						return nil, err
					}
					order, err := orderClause(p, map[string]string{
						"createdAt":   "stories.created_at",
						"publishedAt": "stories.published_at",
						"title":       "stories.title",
					}, "stories.key", "stories.created_at DESC, stories.key")
					if err != nil {
						return nil, err
					}
					return relay.Paginate[models.Story](q, order, pageArgs(p))
				},
			},

			"post": &graphql.Field{
				Type: b.postType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					return b.Posts.Get(key)
				},
			},

			"posts": &graphql.Field{
				Type: postConn,
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"authorKey":      &graphql.ArgumentConfig{Type: graphql.ID},
					"typeOf":         &graphql.ArgumentConfig{Type: graphql.String},
					"tag":            &graphql.ArgumentConfig{Type: graphql.String},
					"textContains":   &graphql.ArgumentConfig{Type: graphql.String},
					"includeDeleted": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"orderBy":        &graphql.ArgumentConfig{Type: graphql.String},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q, err := b.postListQuery(p)
					if err != nil {
						return nil, err
					}
					order, err := orderClause(p, map[string]string{
						"createdAt":   "posts.created_at",
						"publishedAt": "posts.published_at",
					}, "posts.key", "posts.created_at DESC, posts.key")
					if err != nil {
						return nil, err
					}
					return relay.Paginate[models.Post](q, order, pageArgs(p))
				},
			},

			"storyComments": &graphql.Field{
				Type: storyCommentConn,
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"storyKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					storyKey, _ := p.Args["storyKey"].(string)
					q := b.DB.Model(&models.StoryComment{}).
						Where("story_key = ? AND is_deleted = ?", storyKey, false)
					if parent := strArg(p, "parentId"); parent != nil {
						q = q.Where("parent_id = ?", *parent)
					} else {
						q = q.Where("parent_id IS NULL")
					}
					return relay.Paginate[models.StoryComment](q, "created_at ASC, id", pageArgs(p))
				},
			},

			"postComments": &graphql.Field{
				Type: postCommentConn,
				Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
					"postKey":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
				}),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postKey, _ := p.Args["postKey"].(string)
					q := b.DB.Model(&models.PostComment{}).
						Where("post_key = ? AND is_deleted = ?", postKey, false)
					if parent := strArg(p, "parentId"); parent != nil {
						q = q.Where("parent_id = ?", *parent)
					} else {
						q = q.Where("parent_id IS NULL")
					}
					return relay.Paginate[models.PostComment](q, "created_at ASC, id", pageArgs(p))
				},
			},

			"poll": &graphql.Field{
				Type: b.pollType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					var poll models.PostPoll
					if err := b.DB.First(&poll, "id = ?", id).Error; err != nil {
						return nil, apperr.NotFound("poll %q not found", id)
					}
					return &poll, nil
				},
			},

			"polls": &graphql.Field{
				Type: b.connectionType("Poll", b.pollType),
				Args: connectionArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := b.DB.Model(&models.PostPoll{})
					return relay.Paginate[models.PostPoll](q, "created_at DESC, id", pageArgs(p))
				},
			},

			"postImages": &graphql.Field{
				Type: b.connectionType("PostImageList", b.postImageType),
				Args: connectionArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := b.DB.Model(&models.PostImage{})
					return relay.Paginate[models.PostImage](q, "created_at DESC, id", pageArgs(p))
				},
			},

			"postImage": &graphql.Field{
				Type: b.postImageType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					var img models.PostImage
					if err := b.DB.Preload("Images").First(&img, "id = ?", id).Error; err != nil {
						return nil, apperr.NotFound("post image %q not found", id)
					}
					return &img, nil
				},
			},

			"mySavedStories": &graphql.Field{
				Type: b.connectionType("MySavedStory", b.storyType),
				Args: connectionArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := viewer.FromContext(p.Context)
					if !v.Authenticated() {
						return nil, apperr.Authorization("authentication required")
					}
					q := b.DB.Model(&models.Story{}).
						Joins("JOIN user_saved_stories uss ON uss.story_key = stories.key").
						Where("uss.user_key = ?", v.Key())
					return relay.Paginate[models.Story](q, "stories.created_at DESC, stories.key", pageArgs(p))
				},
			},

			"mySavedPosts": &graphql.Field{
				Type: b.connectionType("MySavedPost", b.postType),
				Args: connectionArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					v := viewer.FromContext(p.Context)
					if !v.Authenticated() {
						return nil, apperr.Authorization("authentication required")
					}
					q := b.DB.Model(&models.Post{}).
						Joins("JOIN user_saved_posts usp ON usp.post_key = posts.key").
						Where("usp.user_key = ?", v.Key())
					return relay.Paginate[models.Post](q, "posts.created_at DESC, posts.key", pageArgs(p))
				},
			},
		},
	})
}

func (b *builder) storyListQuery(p graphql.ResolveParams) (*gorm.DB, error) {
	q := b.DB.Model(&models.Story{})
	if inc := boolArg(p, "includeDeleted"); inc == nil || !*inc {
		q = q.Where("stories.is_deleted = ?", false)
	}
	if authorKey := strArg(p, "authorKey"); authorKey != nil {
		q = q.Where("stories.author_key = ?", *authorKey)
	}
	if state := strArg(p, "state"); state != nil {
		if !models.ValidState(*state) {
			return nil, apperr.Validation("unknown state %q", *state)
		}
		q = q.Where("stories.state = ?", *state)
	} else {
		q = q.Where("stories.state = ?", models.StatePublished)
	}
	if tag := strArg(p, "tag"); tag != nil {
		q = q.Joins("JOIN story_tags st ON st.story_key = stories.key").
			Joins("JOIN tags t ON t.id = st.tag_id").
			Where("t.name = ?", *tag)
	}
	if category := strArg(p, "category"); category != nil {
		q = q.Joins("JOIN categories c ON c.id = stories.category_id").
			Where("c.name = ?", *category)
	}
	q = containsFilter(q, "stories.title", strArg(p, "titleContains"))
	q = containsFilter(q, "stories.slug", strArg(p, "slugContains"))
	return q, nil
}

func (b *builder) postListQuery(p graphql.ResolveParams) (*gorm.DB, error) {
	q := b.DB.Model(&models.Post{})
	if inc := boolArg(p, "includeDeleted"); inc == nil || !*inc {
		q = q.Where("posts.is_deleted = ?", false)
	}
	if authorKey := strArg(p, "authorKey"); authorKey != nil {
		q = q.Where("posts.author_key = ?", *authorKey)
	}
	if typeOf := strArg(p, "typeOf"); typeOf != nil {
		if !models.ValidPostType(*typeOf) {
			return nil, apperr.Validation("unknown post type %q", *typeOf)
		}
		q = q.Where("posts.type_of = ?", *typeOf)
	}
	if tag := strArg(p, "tag"); tag != nil {
		q = q.Joins("JOIN post_tags pt ON pt.post_key = posts.key").
			Joins("JOIN tags t ON t.id = pt.tag_id").
			Where("t.name = ?", *tag)
	}
	q = containsFilter(q, "posts.text", strArg(p, "textContains"))
	return q, nil
}

// containsFilter narrows q with a case-insensitive substring match on
// col. A nil or empty needle leaves the query untouched.
func containsFilter(q *gorm.DB, col string, needle *string) *gorm.DB {
	if needle == nil || *needle == "" {
		return q
	}
	return q.Where("LOWER("+col+") LIKE ?", "%"+strings.ToLower(*needle)+"%")
}

// orderClause maps an orderBy directive ("title", "-createdAt") onto a
// whitelisted column, tie-broken on the primary key so cursors stay
// stable across requests. Unknown directives are rejected.
func orderClause(p graphql.ResolveParams, allowed map[string]string, pk, fallback string) (string, error) {
	raw := strArg(p, "orderBy")
	if raw == nil {
		return fallback, nil
	}
	name := *raw
	dir := "ASC"
	if strings.HasPrefix(name, "-") {
		name = strings.TrimPrefix(name, "-")
		dir = "DESC"
	}
	col, ok := allowed[name]
	if !ok {
		return "", apperr.Validation("cannot order by %q", *raw)
	}
	return col + " " + dir + ", " + pk, nil
}
