package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"yatube/internal/forms"
	"yatube/internal/media"
	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	posts    *PostService
	comments *CommentService
	follows  *FollowService
	users    *UserService
	groups   *GroupService
	mediaDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	dir := t.TempDir()

	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db, nil)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	images := media.NewImageSaver(media.NewLocalStore(dir, "/media/"))

	return &fixture{
		db: db,
		posts: NewPostService(postRepo, groupRepo, userRepo, followRepo, commentRepo, images,
			PostOptions{PageSize: 10, Limits: forms.Limits{MaxImageBytes: 1 << 20}}),
		comments: NewCommentService(commentRepo, postRepo),
		follows:  NewFollowService(followRepo, userRepo),
		users:    NewUserService(userRepo).WithHashCost(bcrypt.MinCost),
		groups:   NewGroupService(groupRepo),
		mediaDir: dir,
	}
}

func TestPostService_Pagination(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "leo")
	group := testutil.CreateGroup(t, f.db, "cats")
	testutil.CreatePosts(t, f.db, author, group, 13)

	first, err := f.posts.Index(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 10, first.Len())
	assert.Equal(t, 2, first.NumPages)
	assert.True(t, first.HasNext())

	second, err := f.posts.Index(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
	assert.False(t, second.HasNext())

	_, byGroup, err := f.posts.GroupPosts(ctx, "cats", "2")
	require.NoError(t, err)
	assert.Equal(t, 3, byGroup.Len())

	profile, err := f.posts.Profile(ctx, "leo", "2", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Page.Len())
	assert.Equal(t, int64(13), profile.Count)

	invalid, err := f.posts.Index(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 1, invalid.Number)
	assert.Equal(t, 10, invalid.Len())

	past, err := f.posts.Index(ctx, "9")
	require.NoError(t, err)
	assert.Equal(t, 9, past.Number)
	assert.Zero(t, past.Len())
}

func TestPostService_UnknownLookups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.posts.GroupPosts(ctx, "missing", "")
	assert.True(t, models.IsNotFound(err))
	_, err = f.posts.Profile(ctx, "nobody", "", 0)
	assert.True(t, models.IsNotFound(err))
	_, err = f.posts.Detail(ctx, 42)
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_CreateAndValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "leo")
	group := testutil.CreateGroup(t, f.db, "cats")

	_, err := f.posts.Create(ctx, author.ID, forms.PostInput{Text: "   "})
	errs, ok := FormErrors(err)
	require.True(t, ok)
	assert.True(t, errs.Has("text"))
	assert.Zero(t, testutil.CountRows(t, f.db, &models.Post{}))

	post, err := f.posts.Create(ctx, author.ID, forms.PostInput{
		Text:  "with picture",
		Group: "1",
		Image: &forms.Upload{Filename: "small.gif", Data: testutil.SmallGIF()},
	})
	require.NoError(t, err)
	assert.Equal(t, author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, group.ID, *post.GroupID)
	require.NotEmpty(t, post.Image)
	assert.FileExists(t, filepath.Join(f.mediaDir, post.Image))

	_, err = f.posts.Create(ctx, author.ID, forms.PostInput{
		Text:  "broken picture",
		Image: &forms.Upload{Filename: "fake.png", Data: []byte("definitely not an image")},
	})
	errs, ok = FormErrors(err)
	require.True(t, ok)
	assert.True(t, errs.Has("image"))
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &models.Post{}))
}

func TestPostService_Edit(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "leo")
	stranger := testutil.CreateUser(t, f.db, "ann")

	post, err := f.posts.Create(ctx, author.ID, forms.PostInput{
		Text:  "original",
		Image: &forms.Upload{Filename: "a.png", Data: testutil.PNG(40, 20)},
	})
	require.NoError(t, err)
	oldImage := filepath.Join(f.mediaDir, post.Image)
	require.FileExists(t, oldImage)

	_, err = f.posts.Edit(ctx, stranger.ID, post.ID, forms.PostInput{Text: "hijacked"})
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	edited, err := f.posts.Edit(ctx, author.ID, post.ID, forms.PostInput{
		Text:  "edited",
		Image: &forms.Upload{Filename: "b.png", Data: testutil.PNG(30, 30)},
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Text)
	assert.NotEqual(t, oldImage, filepath.Join(f.mediaDir, edited.Image))

	_, statErr := os.Stat(oldImage)
	assert.True(t, os.IsNotExist(statErr))

	detail, err := f.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", detail.Post.Text)
	assert.Equal(t, author.ID, detail.Post.AuthorID)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &models.Post{}))
}

func TestCommentService_Add(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "leo")
	post := testutil.CreatePost(t, f.db, author, nil, "post")

	_, err := f.comments.Add(ctx, author.ID, 999, forms.CommentInput{Text: "hi"})
	assert.True(t, models.IsNotFound(err))

	_, err = f.comments.Add(ctx, author.ID, post.ID, forms.CommentInput{Text: " "})
	_, ok := FormErrors(err)
	assert.True(t, ok)

	_, err = f.comments.Add(ctx, author.ID, post.ID, forms.CommentInput{Text: "first"})
	require.NoError(t, err)
	_, err = f.comments.Add(ctx, author.ID, post.ID, forms.CommentInput{Text: "second"})
	require.NoError(t, err)

	detail, err := f.posts.Detail(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, "first", detail.Comments[0].Text)
	assert.Equal(t, int64(1), detail.Count)
	assert.Equal(t, int64(2), detail.CommentCount)
}

func TestFollowService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, f.db, "reader")
	author := testutil.CreateUser(t, f.db, "leo")
	testutil.CreatePost(t, f.db, author, nil, "followed post")

	_, created, err := f.follows.Follow(ctx, reader.ID, "reader")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, testutil.CountRows(t, f.db, &models.Follow{}))

	_, created, err = f.follows.Follow(ctx, reader.ID, "leo")
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = f.follows.Follow(ctx, reader.ID, "leo")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), testutil.CountRows(t, f.db, &models.Follow{}))

	feed, err := f.posts.FollowFeed(ctx, reader.ID, "")
	require.NoError(t, err)
	require.Equal(t, 1, feed.Len())
	assert.Equal(t, "followed post", feed.Items[0].Text)

	profile, err := f.posts.Profile(ctx, "leo", "", reader.ID)
	require.NoError(t, err)
	assert.True(t, profile.Following)
	assert.Equal(t, int64(1), profile.Followers)
	assert.Zero(t, profile.Follows)

	own, err := f.posts.Profile(ctx, "reader", "", reader.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.Follows)

	_, deleted, err := f.follows.Unfollow(ctx, reader.ID, "leo")
	require.NoError(t, err)
	assert.True(t, deleted)
	_, deleted, err = f.follows.Unfollow(ctx, reader.ID, "leo")
	require.NoError(t, err)
	assert.False(t, deleted)

	feed, err = f.posts.FollowFeed(ctx, reader.ID, "")
	require.NoError(t, err)
	assert.Zero(t, feed.Len())

	_, _, err = f.follows.Follow(ctx, reader.ID, "ghost")
	assert.True(t, models.IsNotFound(err))
}

func TestUserService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	in := forms.SignupInput{Username: "leo", Email: "leo@example.com", Password1: "war-and-peace", Password2: "war-and-peace"}
	user, err := f.users.Signup(ctx, in)
	require.NoError(t, err)
	assert.NotEqual(t, "war-and-peace", user.Password)

	_, err = f.users.Signup(ctx, in)
	errs, ok := FormErrors(err)
	require.True(t, ok)
	assert.True(t, errs.Has("email"))

	in.Email = "other@example.com"
	_, err = f.users.Signup(ctx, in)
	errs, ok = FormErrors(err)
	require.True(t, ok)
	assert.True(t, errs.Has("username"))

	got, err := f.users.Authenticate(ctx, "leo", "war-and-peace")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = f.users.Authenticate(ctx, "leo", "wrong-password")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
	_, err = f.users.Authenticate(ctx, "ghost", "war-and-peace")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	admin, err := f.users.SetAdmin(ctx, "leo", true)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	reloaded, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.IsAdmin)
}

func TestGroupService(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.groups.Add(ctx, GroupInput{Title: "Cats", Slug: "Bad Slug"})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = f.groups.Add(ctx, GroupInput{Title: "Cats", Slug: "cats"})
	require.NoError(t, err)

	n, err := f.groups.Import(ctx, []GroupInput{
		{Title: "Cats and kittens", Slug: "cats"},
		{Title: "Dogs", Slug: "dogs"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = f.groups.Import(ctx, []GroupInput{{Title: "Birds", Slug: "birds"}, {Title: "", Slug: "empty"}})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	groups, err := f.groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cats and kittens", groups[0].Title)
}
