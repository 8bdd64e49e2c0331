package gql

import (
	"time"

	"github.com/graphql-go/graphql"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/services"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

type clapStoryPayload struct {
	Story   *models.Story `json:"story"`
	Clapped bool          `json:"clapped"`
}

type saveStoryPayload struct {
	Story *models.Story `json:"story"`
	Saved bool          `json:"saved"`
}

type clapPostPayload struct {
	Post    *models.Post `json:"post"`
	Clapped bool         `json:"clapped"`
}

type savePostPayload struct {
	Post  *models.Post `json:"post"`
	Saved bool         `json:"saved"`
}

type followCreatorPayload struct {
	Creator   *models.Creator `json:"creator"`
	Following bool            `json:"following"`
	Notify    string          `json:"notify"`
}

type voteStoryCommentPayload struct {
	Comment *models.StoryComment `json:"comment"`
	Voted   bool                 `json:"voted"`
}

type votePostCommentPayload struct {
	Comment *models.PostComment `json:"comment"`
	Voted   bool                `json:"voted"`
}

func imageInputFromArg(arg interface{}) *services.ImageInput {
	m, ok := arg.(map[string]interface{})
	if !ok {
		return nil
	}
	in := &services.ImageInput{}
	if v, ok := m["action"].(string); ok {
		in.Action = v
	}
	if v, ok := m["id"].(string); ok {
		in.ID = &v
	}
	if v, ok := m["url"].(string); ok {
		in.URL = &v
	}
	if v, ok := m["provider"].(string); ok {
		in.Provider = &v
	}
	if v, ok := m["alt"].(string); ok {
		in.Alt = &v
	}
	if v, ok := m["caption"].(string); ok {
		in.Caption = &v
	}
	return in
}

func socialLinksFromArg(arg interface{}) []models.SocialLink {
	raw, ok := arg.([]interface{})
	if !ok {
		return nil
	}
	links := make([]models.SocialLink, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		link := models.SocialLink{ID: i + 1}
		if v, ok := m["id"].(int); ok {
			link.ID = v
		}
		if v, ok := m["name"].(string); ok {
			link.Name = v
		}
		if v, ok := m["url"].(string); ok {
			link.URL = v
		}
		links = append(links, link)
	}
	return links
}

func timeArg(p graphql.ResolveParams, name string) *time.Time {
	if v, ok := p.Args[name].(time.Time); ok {
		return &v
	}
	return nil
}

func (b *builder) mutationType() *graphql.Object {
	clapStoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ClapStoryPayload",
		Fields: graphql.Fields{
			"story":   &graphql.Field{Type: b.storyType},
			"clapped": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	saveStoryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SaveStoryPayload",
		Fields: graphql.Fields{
			"story": &graphql.Field{Type: b.storyType},
			"saved": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	clapPostType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ClapPostPayload",
		Fields: graphql.Fields{
			"post":    &graphql.Field{Type: b.postType},
			"clapped": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	savePostType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SavePostPayload",
		Fields: graphql.Fields{
			"post":  &graphql.Field{Type: b.postType},
			"saved": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	followCreatorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FollowCreatorPayload",
		Fields: graphql.Fields{
			"creator":   &graphql.Field{Type: b.creatorType},
			"following": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"notify":    &graphql.Field{Type: graphql.String},
		},
	})
	voteStoryCommentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VoteStoryCommentPayload",
		Fields: graphql.Fields{
			"comment": &graphql.Field{Type: b.storyCommentType},
			"voted":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})
	votePostCommentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "VotePostCommentPayload",
		Fields: graphql.Fields{
			"comment": &graphql.Field{Type: b.postCommentType},
			"voted":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		},
	})

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCreator": &graphql.Field{
				Type: b.creatorType,
				Args: graphql.FieldConfigArgument{
					"name":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"handle": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name, _ := p.Args["name"].(string)
					handle, _ := p.Args["handle"].(string)
					return b.Creators.Create(viewer.FromContext(p.Context), name, handle)
				},
			},

			"updateCreator": &graphql.Field{
				Type: b.creatorType,
				Args: graphql.FieldConfigArgument{
					"key":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"name":         &graphql.ArgumentConfig{Type: graphql.String},
					"handle":       &graphql.ArgumentConfig{Type: graphql.String},
					"description":  &graphql.ArgumentConfig{Type: graphql.String},
					"contactEmail": &graphql.ArgumentConfig{Type: graphql.String},
					"social":       &graphql.ArgumentConfig{Type: graphql.NewList(b.socialLinkInputType)},
					"image":        &graphql.ArgumentConfig{Type: b.imageInputType},
					"banner":       &graphql.ArgumentConfig{Type: b.imageInputType},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					patch := services.CreatorPatch{
						Name:         strArg(p, "name"),
						Handle:       strArg(p, "handle"),
						Description:  strArg(p, "description"),
						ContactEmail: strArg(p, "contactEmail"),
					}
					if raw, ok := p.Args["social"]; ok {
						patch.Social = socialLinksFromArg(raw)
					}
					if raw, ok := p.Args["image"]; ok {
						patch.Image = imageInputFromArg(raw)
					}
					if raw, ok := p.Args["banner"]; ok {
						patch.Banner = imageInputFromArg(raw)
					}
					return b.Creators.Update(p.Context, viewer.FromContext(p.Context), key, patch)
				},
			},

			"deleteCreator": &graphql.Field{
				Type: b.creatorType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					return b.Creators.Delete(viewer.FromContext(p.Context), key)
				},
			},

			"followCreator": &graphql.Field{
				Type: followCreatorType,
				Args: graphql.FieldConfigArgument{
					"creatorKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"notify":     &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					creatorKey, _ := p.Args["creatorKey"].(string)
					notify := ""
					if n := strArg(p, "notify"); n != nil {
						notify = *n
					}
					creator, following, pref, err := b.Creators.Follow(viewer.FromContext(p.Context), creatorKey, notify)
					if err != nil {
						return nil, err
					}
					return followCreatorPayload{Creator: creator, Following: following, Notify: pref}, nil
				},
			},

			"createStory": &graphql.Field{
				Type: b.storyType,
				Args: graphql.FieldConfigArgument{
					"authorKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":     &graphql.ArgumentConfig{Type: graphql.String},
					"slug":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					authorKey, _ := p.Args["authorKey"].(string)
					return b.Stories.Create(viewer.FromContext(p.Context), authorKey,
						strArg(p, "title"), strArg(p, "slug"))
				},
			},

			"updateStory": &graphql.Field{
				Type: b.storyType,
				Args: graphql.FieldConfigArgument{
					"key":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"title":       &graphql.ArgumentConfig{Type: graphql.String},
					"slug":        &graphql.ArgumentConfig{Type: graphql.String},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
					"content":     &graphql.ArgumentConfig{Type: graphql.String},
					"privacy":     &graphql.ArgumentConfig{Type: graphql.String},
					"state":       &graphql.ArgumentConfig{Type: graphql.String},
					"tags":        &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"category":    &graphql.ArgumentConfig{Type: graphql.String},
					"image":       &graphql.ArgumentConfig{Type: b.imageInputType},
					"doPublish":   &graphql.ArgumentConfig{Type: graphql.Boolean},
					"scheduledAt": &graphql.ArgumentConfig{Type: graphql.DateTime},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					patch := services.StoryPatch{
						Title:       strArg(p, "title"),
						Slug:        strArg(p, "slug"),
						Description: strArg(p, "description"),
						Content:     strArg(p, "content"),
						Privacy:     strArg(p, "privacy"),
						State:       strArg(p, "state"),
						Tags:        strListArg(p, "tags"),
						Category:    strArg(p, "category"),
						DoPublish:   boolArg(p, "doPublish"),
						ScheduledAt: timeArg(p, "scheduledAt"),
					}
					if raw, ok := p.Args["image"]; ok {
						patch.Image = imageInputFromArg(raw)
					}
					return b.Stories.Update(p.Context, viewer.FromContext(p.Context), key, patch)
				},
			},

			"deleteStory": &graphql.Field{
				Type: b.storyType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					return b.Stories.Delete(viewer.FromContext(p.Context), key)
				},
			},

			"clapStory": &graphql.Field{
				Type: clapStoryType,
				Args: graphql.FieldConfigArgument{
					"storyKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					storyKey, _ := p.Args["storyKey"].(string)
					story, clapped, err := b.Stories.Clap(viewer.FromContext(p.Context), storyKey)
					if err != nil {
						return nil, err
					}
					return clapStoryPayload{Story: story, Clapped: clapped}, nil
				},
			},

			"saveStory": &graphql.Field{
				Type: saveStoryType,
				Args: graphql.FieldConfigArgument{
					"storyKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					storyKey, _ := p.Args["storyKey"].(string)
					story, saved, err := b.Stories.Save(viewer.FromContext(p.Context), storyKey)
					if err != nil {
						return nil, err
					}
					return saveStoryPayload{Story: story, Saved: saved}, nil
				},
			},

			"createStoryComment": &graphql.Field{
				Type: b.storyCommentType,
				Args: graphql.FieldConfigArgument{
					"storyKey":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"parentId":  &graphql.ArgumentConfig{Type: graphql.ID},
					"authorKey": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					storyKey, _ := p.Args["storyKey"].(string)
					content, _ := p.Args["content"].(string)
					return b.Stories.CreateComment(viewer.FromContext(p.Context), storyKey, content,
						strArg(p, "parentId"), strArg(p, "authorKey"))
				},
			},

			"updateStoryComment": &graphql.Field{
				Type: b.storyCommentType,
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					content, _ := p.Args["content"].(string)
					return b.Stories.UpdateComment(viewer.FromContext(p.Context), id, content)
				},
			},

			"deleteStoryComment": &graphql.Field{
				Type: b.storyCommentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return b.Stories.DeleteComment(viewer.FromContext(p.Context), id)
				},
			},

			"voteStoryComment": &graphql.Field{
				Type: voteStoryCommentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					comment, voted, err := b.Stories.VoteOnComment(viewer.FromContext(p.Context), id)
					if err != nil {
						return nil, err
					}
					return voteStoryCommentPayload{Comment: comment, Voted: voted}, nil
				},
			},

			"createPost": &graphql.Field{
				Type: b.postType,
				Args: graphql.FieldConfigArgument{
					"authorKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"text":      &graphql.ArgumentConfig{Type: graphql.String},
					"typeOf":    &graphql.ArgumentConfig{Type: graphql.String},
					"pollId":    &graphql.ArgumentConfig{Type: graphql.ID},
					"imageId":   &graphql.ArgumentConfig{Type: graphql.ID},
					"tags":      &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := services.PostInput{
						Tags:    strListArg(p, "tags"),
						PollID:  strArg(p, "pollId"),
						ImageID: strArg(p, "imageId"),
					}
					in.AuthorKey, _ = p.Args["authorKey"].(string)
					if text := strArg(p, "text"); text != nil {
						in.Text = *text
					}
					if typeOf := strArg(p, "typeOf"); typeOf != nil {
						in.TypeOf = *typeOf
					}
					return b.Posts.Create(viewer.FromContext(p.Context), in)
				},
			},

			"updatePost": &graphql.Field{
				Type: b.postType,
				Args: graphql.FieldConfigArgument{
					"key":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"text":        &graphql.ArgumentConfig{Type: graphql.String},
					"privacy":     &graphql.ArgumentConfig{Type: graphql.String},
					"state":       &graphql.ArgumentConfig{Type: graphql.String},
					"tags":        &graphql.ArgumentConfig{Type: graphql.NewList(graphql.String)},
					"doPublish":   &graphql.ArgumentConfig{Type: graphql.Boolean},
					"scheduledAt": &graphql.ArgumentConfig{Type: graphql.DateTime},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					patch := services.PostPatch{
						Text:        strArg(p, "text"),
						Privacy:     strArg(p, "privacy"),
						State:       strArg(p, "state"),
						Tags:        strListArg(p, "tags"),
						DoPublish:   boolArg(p, "doPublish"),
						ScheduledAt: timeArg(p, "scheduledAt"),
					}
					return b.Posts.Update(viewer.FromContext(p.Context), key, patch)
				},
			},

			"deletePost": &graphql.Field{
				Type: b.postType,
				Args: graphql.FieldConfigArgument{
					"key": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, _ := p.Args["key"].(string)
					return b.Posts.Delete(viewer.FromContext(p.Context), key)
				},
			},

			"clapPost": &graphql.Field{
				Type: clapPostType,
				Args: graphql.FieldConfigArgument{
					"postKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postKey, _ := p.Args["postKey"].(string)
					post, clapped, err := b.Posts.Clap(viewer.FromContext(p.Context), postKey)
					if err != nil {
						return nil, err
					}
					return clapPostPayload{Post: post, Clapped: clapped}, nil
				},
			},

			"savePost": &graphql.Field{
				Type: savePostType,
				Args: graphql.FieldConfigArgument{
					"postKey": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postKey, _ := p.Args["postKey"].(string)
					post, saved, err := b.Posts.Save(viewer.FromContext(p.Context), postKey)
					if err != nil {
						return nil, err
					}
					return savePostPayload{Post: post, Saved: saved}, nil
				},
			},

			"createPostComment": &graphql.Field{
				Type: b.postCommentType,
				Args: graphql.FieldConfigArgument{
					"postKey":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"parentId":  &graphql.ArgumentConfig{Type: graphql.ID},
					"authorKey": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postKey, _ := p.Args["postKey"].(string)
					content, _ := p.Args["content"].(string)
					return b.Posts.CreateComment(viewer.FromContext(p.Context), postKey, content,
						strArg(p, "parentId"), strArg(p, "authorKey"))
				},
			},

			"updatePostComment": &graphql.Field{
				Type: b.postCommentType,
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"content": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					content, _ := p.Args["content"].(string)
					return b.Posts.UpdateComment(viewer.FromContext(p.Context), id, content)
				},
			},

			"deletePostComment": &graphql.Field{
				Type: b.postCommentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return b.Posts.DeleteComment(viewer.FromContext(p.Context), id)
				},
			},

			"votePostComment": &graphql.Field{
				Type: votePostCommentType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					comment, voted, err := b.Posts.VoteOnComment(viewer.FromContext(p.Context), id)
					if err != nil {
						return nil, err
					}
					return votePostCommentPayload{Comment: comment, Voted: voted}, nil
				},
			},

			"createPostPoll": &graphql.Field{
				Type: b.pollType,
				Args: graphql.FieldConfigArgument{
					"question": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"options":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.String))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					question, _ := p.Args["question"].(string)
					return b.Posts.CreatePoll(viewer.FromContext(p.Context), question, strListArg(p, "options"))
				},
			},

			"votePostPoll": &graphql.Field{
				Type: b.postType,
				Args: graphql.FieldConfigArgument{
					"postKey":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"optionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					postKey, _ := p.Args["postKey"].(string)
					optionID, _ := p.Args["optionId"].(int)
					return b.Posts.VotePoll(viewer.FromContext(p.Context), postKey, optionID)
				},
			},

			"createPostImage": &graphql.Field{
				Type: b.postImageType,
				Args: graphql.FieldConfigArgument{
					"caption": &graphql.ArgumentConfig{Type: graphql.String},
					"images":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(b.imageInputType))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var inputs []services.ImageInput
					if raw, ok := p.Args["images"].([]interface{}); ok {
						for _, item := range raw {
							if in := imageInputFromArg(item); in != nil {
								inputs = append(inputs, *in)
							}
						}
					}
					return b.Posts.CreatePostImage(p.Context, viewer.FromContext(p.Context),
						strArg(p, "caption"), inputs)
				},
			},
		},
	})
}
