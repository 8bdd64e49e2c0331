package gql

import (
	"github.com/graphql-go/graphql"
	"github.com/techgyan/techgyan-backend/internal/models"
	"github.com/techgyan/techgyan-backend/internal/relay"
	"github.com/techgyan/techgyan-backend/internal/viewer"
)

// Source helpers. Connection pages carry value nodes while single-item
// resolvers hand out pointers; derived fields accept both.

func userSource(p graphql.ResolveParams) *models.User {
	switch s := p.Source.(type) {
	case *models.User:
		return s
	case models.User:
		return &s
	}
	return nil
}

func creatorSource(p graphql.ResolveParams) *models.Creator {
	switch s := p.Source.(type) {
	case *models.Creator:
		return s
	case models.Creator:
		return &s
	}
	return nil
}

func storySource(p graphql.ResolveParams) *models.Story {
	switch s := p.Source.(type) {
	case *models.Story:
		return s
	case models.Story:
		return &s
	}
	return nil
}

func storyCommentSource(p graphql.ResolveParams) *models.StoryComment {
	switch s := p.Source.(type) {
	case *models.StoryComment:
		return s
	case models.StoryComment:
		return &s
	}
	return nil
}

func postSource(p graphql.ResolveParams) *models.Post {
	switch s := p.Source.(type) {
	case *models.Post:
		return s
	case models.Post:
		return &s
	}
	return nil
}

func postCommentSource(p graphql.ResolveParams) *models.PostComment {
	switch s := p.Source.(type) {
	case *models.PostComment:
		return s
	case models.PostComment:
		return &s
	}
	return nil
}

func pollSource(p graphql.ResolveParams) *models.PostPoll {
	switch s := p.Source.(type) {
	case *models.PostPoll:
		return s
	case models.PostPoll:
		return &s
	}
	return nil
}

// pollOptionView pairs an option with its poll so tally fields can be
// resolved without a parent lookup.
type pollOptionView struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	PollID string `json:"-"`
}

func (b *builder) buildTypes() {
	b.buildPageInfo()

	b.imageType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Image",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"url":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"alt":      &graphql.Field{Type: graphql.String},
			"caption":  &graphql.Field{Type: graphql.String},
			"provider": &graphql.Field{Type: graphql.String},
		},
	})

	b.tagType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Tag",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	b.categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	socialLinkType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SocialLink",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
			"url":  &graphql.Field{Type: graphql.String},
		},
	})

	b.userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"key":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"firstName": &graphql.Field{Type: graphql.String},
			"lastName":  &graphql.Field{Type: graphql.String},
			"image":     &graphql.Field{Type: b.imageType},
			"fullName": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if u := userSource(p); u != nil {
						return u.FullName(), nil
					}
					return nil, nil
				},
			},
			// Email is visible to its owner only.
			"email": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					u := userSource(p)
					v := viewer.FromContext(p.Context)
					if u == nil || !v.Authenticated() || v.Key() != u.Key {
						return nil, nil
					}
					return u.Email, nil
				},
			},
		},
	})

	b.creatorType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Creator",
		Fields: graphql.Fields{
			"key":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"handle":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":  &graphql.Field{Type: graphql.String},
			"contactEmail": &graphql.Field{Type: graphql.String},
			"image":        &graphql.Field{Type: b.imageType},
			"banner":       &graphql.Field{Type: b.imageType},
			"createdAt":    &graphql.Field{Type: graphql.DateTime},
			"isDeleted":    &graphql.Field{Type: graphql.Boolean},
			"user":         &graphql.Field{Type: b.userType},
			"social": &graphql.Field{
				Type: graphql.NewList(socialLinkType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if c := creatorSource(p); c != nil {
						return c.SocialLinks(), nil
					}
					return nil, nil
				},
			},
			"followersCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := creatorSource(p)
					if c == nil {
						return 0, nil
					}
					return b.Creators.FollowersCount(c.Key)
				},
			},
			"followedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := creatorSource(p)
					if c == nil {
						return false, nil
					}
					return b.Creators.FollowedBy(viewer.FromContext(p.Context), c.Key)
				},
			},
		},
	})

	b.buildStoryTypes()
	b.buildPostTypes()

	b.eventType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ContentEvent",
		Fields: graphql.Fields{
			"topic":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"kind":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"subjectKey": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"actorKey":   &graphql.Field{Type: graphql.String},
			"at":         &graphql.Field{Type: graphql.DateTime},
		},
	})

	// Saved-content connections close a user -> story/post cycle, so
	// they land after both sides exist.
	b.userType.AddFieldConfig("savedStories", &graphql.Field{
		Type: b.connectionType("SavedStory", b.storyType),
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			u := userSource(p)
			v := viewer.FromContext(p.Context)
			if u == nil || !v.Authenticated() || v.Key() != u.Key {
				return nil, nil
			}
			q := b.DB.Model(&models.Story{}).
				Joins("JOIN user_saved_stories uss ON uss.story_key = stories.key").
				Where("uss.user_key = ?", u.Key)
			return relay.Paginate[models.Story](q, "stories.created_at DESC, stories.key", pageArgs(p))
		},
	})
	b.userType.AddFieldConfig("savedPosts", &graphql.Field{
		Type: b.connectionType("SavedPost", b.postType),
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			u := userSource(p)
			v := viewer.FromContext(p.Context)
			if u == nil || !v.Authenticated() || v.Key() != u.Key {
				return nil, nil
			}
			q := b.DB.Model(&models.Post{}).
				Joins("JOIN user_saved_posts usp ON usp.post_key = posts.key").
				Where("usp.user_key = ?", u.Key)
			return relay.Paginate[models.Post](q, "posts.created_at DESC, posts.key", pageArgs(p))
		},
	})

	b.buildInputs()
}

func (b *builder) buildStoryTypes() {
	b.storyType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Story",
		Fields: graphql.Fields{
			"key":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"slug":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"title":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"content":     &graphql.Field{Type: graphql.String},
			"state":       &graphql.Field{Type: graphql.String},
			"privacy":     &graphql.Field{Type: graphql.String},
			"publishedAt": &graphql.Field{Type: graphql.DateTime},
			"scheduledAt": &graphql.Field{Type: graphql.DateTime},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
			"updatedAt":   &graphql.Field{Type: graphql.DateTime},
			"isDeleted":   &graphql.Field{Type: graphql.Boolean},
			"image":       &graphql.Field{Type: b.imageType},
			"category":    &graphql.Field{Type: b.categoryType},
			"author": &graphql.Field{
				Type: b.creatorType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return nil, nil
					}
					if s.Author != nil {
						return s.Author, nil
					}
					return b.Creators.Get(s.AuthorKey)
				},
			},
			"tags": &graphql.Field{
				Type: graphql.NewList(b.tagType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return nil, nil
					}
					if s.Tags != nil {
						return s.Tags, nil
					}
					var tags []*models.Tag
					err := b.DB.Model(s).Association("Tags").Find(&tags)
					return tags, err
				},
			},
			"clapsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return 0, nil
					}
					return b.Stories.ClapsCount(s.Key)
				},
			},
			"clappedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return false, nil
					}
					return b.Stories.ClappedBy(viewer.FromContext(p.Context), s.Key)
				},
			},
			"savedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return false, nil
					}
					return b.Stories.SavedBy(viewer.FromContext(p.Context), s.Key)
				},
			},
			"commentsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := storySource(p)
					if s == nil {
						return 0, nil
					}
					return b.Stories.CommentsCount(s.Key)
				},
			},
		},
	})

	b.storyCommentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "StoryComment",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"parentId":  &graphql.Field{Type: graphql.ID},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
			"isDeleted": &graphql.Field{Type: graphql.Boolean},
			"user": &graphql.Field{
				Type: b.userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := storyCommentSource(p)
					if c == nil {
						return nil, nil
					}
					if c.User != nil {
						return c.User, nil
					}
					var u models.User
					if err := b.DB.First(&u, "key = ?", c.UserKey).Error; err != nil {
						return nil, nil
					}
					return &u, nil
				},
			},
			"author": &graphql.Field{
				Type: b.creatorType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := storyCommentSource(p)
					if c == nil || c.AuthorKey == nil {
						return nil, nil
					}
					return b.Creators.Get(*c.AuthorKey)
				},
			},
			"votesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := storyCommentSource(p)
					if c == nil {
						return 0, nil
					}
					return b.Stories.CommentVotesCount(c.ID)
				},
			},
			"votedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := storyCommentSource(p)
					if c == nil {
						return false, nil
					}
					return b.Stories.CommentVotedBy(viewer.FromContext(p.Context), c.ID)
				},
			},
			"replyCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := storyCommentSource(p)
					if c == nil {
						return 0, nil
					}
					return b.Stories.ReplyCount(c.ID)
				},
			},
		},
	})

	storyCommentConn := b.connectionType("StoryComment", b.storyCommentType)

	b.storyCommentType.AddFieldConfig("replies", &graphql.Field{
		Type: storyCommentConn,
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			c := storyCommentSource(p)
			if c == nil {
				return nil, nil
			}
			q := b.DB.Model(&models.StoryComment{}).
				Where("parent_id = ? AND is_deleted = ?", c.ID, false)
			return relay.Paginate[models.StoryComment](q, "created_at ASC, id", pageArgs(p))
		},
	})

	// Root comments unless a parent is named; matches the listing
	// default of the comments query.
	b.storyType.AddFieldConfig("comments", &graphql.Field{
		Type: storyCommentConn,
		Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
			"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
		}),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			s := storySource(p)
			if s == nil {
				return nil, nil
			}
			q := b.DB.Model(&models.StoryComment{}).
				Where("story_key = ? AND is_deleted = ?", s.Key, false)
			if parent := strArg(p, "parentId"); parent != nil {
				q = q.Where("parent_id = ?", *parent)
			} else {
				q = q.Where("parent_id IS NULL")
			}
			return relay.Paginate[models.StoryComment](q, "created_at ASC, id", pageArgs(p))
		},
	})
}

func (b *builder) buildPostTypes() {
	b.pollOptionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PollOption",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"text": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"votesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					opt, ok := p.Source.(pollOptionView)
					if !ok {
						return 0, nil
					}
					return b.Posts.PollOptionVotes(opt.PollID, opt.ID)
				},
			},
		},
	})

	b.pollType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Poll",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"question": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"options": &graphql.Field{
				Type: graphql.NewList(b.pollOptionType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					poll := pollSource(p)
					if poll == nil {
						return nil, nil
					}
					opts := poll.OptionList()
					views := make([]pollOptionView, len(opts))
					for i, opt := range opts {
						views[i] = pollOptionView{ID: opt.ID, Text: opt.Text, PollID: poll.ID}
					}
					return views, nil
				},
			},
			"votesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					poll := pollSource(p)
					if poll == nil {
						return 0, nil
					}
					return b.Posts.PollVotesCount(poll.ID)
				},
			},
			"myVote": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					poll := pollSource(p)
					if poll == nil {
						return nil, nil
					}
					return b.Posts.MyPollVote(viewer.FromContext(p.Context), poll.ID)
				},
			},
		},
	})

	b.postImageType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PostImage",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"caption": &graphql.Field{Type: graphql.String},
			"images": &graphql.Field{
				Type: graphql.NewList(b.imageType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var agg *models.PostImage
					switch s := p.Source.(type) {
					case *models.PostImage:
						agg = s
					case models.PostImage:
						agg = &s
					}
					if agg == nil {
						return nil, nil
					}
					if agg.Images != nil {
						return agg.Images, nil
					}
					var imgs []*models.Image
					err := b.DB.Model(agg).Association("Images").Find(&imgs)
					return imgs, err
				},
			},
		},
	})

	b.postType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"key":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"text":        &graphql.Field{Type: graphql.String},
			"typeOf":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"state":       &graphql.Field{Type: graphql.String},
			"privacy":     &graphql.Field{Type: graphql.String},
			"publishedAt": &graphql.Field{Type: graphql.DateTime},
			"scheduledAt": &graphql.Field{Type: graphql.DateTime},
			"createdAt":   &graphql.Field{Type: graphql.DateTime},
			"updatedAt":   &graphql.Field{Type: graphql.DateTime},
			"isDeleted":   &graphql.Field{Type: graphql.Boolean},
			"author": &graphql.Field{
				Type: b.creatorType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return nil, nil
					}
					if s.Author != nil {
						return s.Author, nil
					}
					return b.Creators.Get(s.AuthorKey)
				},
			},
			"poll": &graphql.Field{
				Type: b.pollType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil || s.PollID == nil {
						return nil, nil
					}
					if s.Poll != nil {
						return s.Poll, nil
					}
					var poll models.PostPoll
					if err := b.DB.First(&poll, "id = ?", *s.PollID).Error; err != nil {
						return nil, nil
					}
					return &poll, nil
				},
			},
			"image": &graphql.Field{
				Type: b.postImageType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil || s.ImageID == nil {
						return nil, nil
					}
					if s.Image != nil {
						return s.Image, nil
					}
					var img models.PostImage
					if err := b.DB.Preload("Images").First(&img, "id = ?", *s.ImageID).Error; err != nil {
						return nil, nil
					}
					return &img, nil
				},
			},
			"tags": &graphql.Field{
				Type: graphql.NewList(b.tagType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return nil, nil
					}
					if s.Tags != nil {
						return s.Tags, nil
					}
					var tags []*models.Tag
					err := b.DB.Model(s).Association("Tags").Find(&tags)
					return tags, err
				},
			},
			"clapsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return 0, nil
					}
					return b.Posts.ClapsCount(s.Key)
				},
			},
			"clappedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return false, nil
					}
					return b.Posts.ClappedBy(viewer.FromContext(p.Context), s.Key)
				},
			},
			"savedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return false, nil
					}
					return b.Posts.SavedBy(viewer.FromContext(p.Context), s.Key)
				},
			},
			"commentsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					s := postSource(p)
					if s == nil {
						return 0, nil
					}
					return b.Posts.CommentsCount(s.Key)
				},
			},
		},
	})

	b.postCommentType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PostComment",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"content":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"parentId":  &graphql.Field{Type: graphql.ID},
			"createdAt": &graphql.Field{Type: graphql.DateTime},
			"updatedAt": &graphql.Field{Type: graphql.DateTime},
			"isDeleted": &graphql.Field{Type: graphql.Boolean},
			"user": &graphql.Field{
				Type: b.userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := postCommentSource(p)
					if c == nil {
						return nil, nil
					}
					if c.User != nil {
						return c.User, nil
					}
					var u models.User
					if err := b.DB.First(&u, "key = ?", c.UserKey).Error; err != nil {
						return nil, nil
					}
					return &u, nil
				},
			},
			"author": &graphql.Field{
				Type: b.creatorType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := postCommentSource(p)
					if c == nil || c.AuthorKey == nil {
						return nil, nil
					}
					return b.Creators.Get(*c.AuthorKey)
				},
			},
			"votesCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := postCommentSource(p)
					if c == nil {
						return 0, nil
					}
					return b.Posts.CommentVotesCount(c.ID)
				},
			},
			"votedByMe": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := postCommentSource(p)
					if c == nil {
						return false, nil
					}
					return b.Posts.CommentVotedBy(viewer.FromContext(p.Context), c.ID)
				},
			},
			"replyCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c := postCommentSource(p)
					if c == nil {
						return 0, nil
					}
					return b.Posts.ReplyCount(c.ID)
				},
			},
		},
	})

	postCommentConn := b.connectionType("PostComment", b.postCommentType)

	b.postCommentType.AddFieldConfig("replies", &graphql.Field{
		Type: postCommentConn,
		Args: connectionArgs,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			c := postCommentSource(p)
			if c == nil {
				return nil, nil
			}
			q := b.DB.Model(&models.PostComment{}).
				Where("parent_id = ? AND is_deleted = ?", c.ID, false)
			return relay.Paginate[models.PostComment](q, "created_at ASC, id", pageArgs(p))
		},
	})

	b.postType.AddFieldConfig("comments", &graphql.Field{
		Type: postCommentConn,
		Args: mergeArgs(connectionArgs, graphql.FieldConfigArgument{
			"parentId": &graphql.ArgumentConfig{Type: graphql.ID},
		}),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			s := postSource(p)
			if s == nil {
				return nil, nil
			}
			q := b.DB.Model(&models.PostComment{}).
				Where("post_key = ? AND is_deleted = ?", s.Key, false)
			if parent := strArg(p, "parentId"); parent != nil {
				q = q.Where("parent_id = ?", *parent)
			} else {
				q = q.Where("parent_id IS NULL")
			}
			return relay.Paginate[models.PostComment](q, "created_at ASC, id", pageArgs(p))
		},
	})
}

func (b *builder) buildInputs() {
	b.imageInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ImageInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"action":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"id":       &graphql.InputObjectFieldConfig{Type: graphql.ID},
			"url":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"provider": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"alt":      &graphql.InputObjectFieldConfig{Type: graphql.String},
			"caption":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
	b.socialLinkInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SocialLinkInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":   &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"url":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
}
