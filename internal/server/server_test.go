package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"yatube/internal/cache"
	"yatube/internal/config"
	"yatube/internal/forms"
	"yatube/internal/media"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	s     *Server
	app   *fiber.App
	db    *gorm.DB
	views *testutil.RecordingViews
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                 "test",
		Port:                "0",
		JWTSecret:           "test-secret-that-is-long-enough-for-hs256",
		SessionTTL:          time.Hour,
		PageSize:            10,
		CacheBackend:        "memory",
		CacheIndexTTL:       20 * time.Second,
		MediaBackend:        "local",
		MediaRoot:           t.TempDir(),
		MediaURL:            "/media/",
		MediaMaxUploadBytes: 1 << 20,
	}
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	cfg := testConfig(t)
	db := testutil.NewDB(t)
	rec := testutil.NewRecordingViews()

	opts = append([]Option{WithViews(rec), WithMediaStore(media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL))}, opts...)
	s, err := NewServerWithDeps(cfg, db, nil, opts...)
	require.NoError(t, err)
	return &testEnv{s: s, app: s.App(), db: db, views: rec}
}

// cookie signs user in without going through the login form.
func (e *testEnv) cookie(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := e.s.sessions.Issue(user.ID, user.Username)
	require.NoError(t, err)
	return middleware.SessionCookie + "=" + token
}

func (e *testEnv) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(t, req)
}

func (e *testEnv) postForm(t *testing.T, path, cookie string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(t, req)
}

func (e *testEnv) postMultipart(t *testing.T, path, cookie string, fields map[string]string, filename string, file []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	return e.do(t, req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPaginatedPages(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	group := testutil.CreateGroup(t, e.db, "cats")
	testutil.CreatePosts(t, e.db, author, group, 13)

	tests := []struct {
		name     string
		path     string
		template string
		want     int
	}{
		{"index first page", "/", "posts/index", 10},
		{"index second page", "/?page=2", "posts/index", 3},
		{"group first page", "/group/cats/", "posts/group_list", 10},
		{"group second page", "/group/cats/?page=2", "posts/group_list", 3},
		{"profile first page", "/profile/leo/", "posts/profile", 10},
		{"profile second page", "/profile/leo/?page=2", "posts/profile", 3},
		{"page past the end", "/group/cats/?page=9", "posts/group_list", 0},
		{"huge page number", "/?page=922337203685477582", "posts/index", 0},
		{"garbage page number", "/profile/leo/?page=abc", "posts/profile", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := e.get(t, tt.path, "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			last := e.views.Last()
			assert.Equal(t, tt.template, last.Name)
			require.NotNil(t, last.PostPage())
			assert.Len(t, last.PostPage().Items, tt.want)
		})
	}
}

func TestIndexNewestFirst(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	posts := testutil.CreatePosts(t, e.db, author, nil, 3)

	resp := e.get(t, "/", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	items := e.views.Last().PostPage().Items
	require.Len(t, items, 3)
	assert.Equal(t, posts[2].ID, items[0].ID)
	assert.Equal(t, posts[0].ID, items[2].ID)
	assert.Equal(t, "leo", items[0].Author.Username)
}

func TestGroupListShowsOnlyItsPosts(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	cats := testutil.CreateGroup(t, e.db, "cats")
	dogs := testutil.CreateGroup(t, e.db, "dogs")
	inCats := testutil.CreatePost(t, e.db, author, cats, "meow")
	testutil.CreatePost(t, e.db, author, dogs, "woof")

	e.get(t, "/group/cats/", "")
	last := e.views.Last()
	require.Len(t, last.PostPage().Items, 1)
	assert.Equal(t, inCats.ID, last.PostPage().Items[0].ID)
	assert.Equal(t, "cats", last.Context["group"].(*models.Group).Slug)

	e.get(t, "/group/dogs/", "")
	for _, p := range e.views.Last().PostPage().Items {
		assert.NotEqual(t, inCats.ID, p.ID)
	}
}

func TestUnknownPagesAre404(t *testing.T) {
	e := newTestEnv(t)

	for _, path := range []string{"/group/nope/", "/profile/nobody/", "/posts/999/", "/posts/abc/", "/unexisting_page/"} {
		t.Run(path, func(t *testing.T) {
			resp := e.get(t, path, "")
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "core/404", e.views.Last().Name)
		})
	}
}

func TestProfileContext(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	reader := testutil.CreateUser(t, e.db, "reader")
	testutil.CreatePosts(t, e.db, author, nil, 2)

	e.get(t, "/profile/leo/", e.cookie(t, reader))
	ctx := e.views.Last().Context
	assert.Equal(t, int64(2), ctx["count"])
	assert.Equal(t, false, ctx["following"])
	assert.Equal(t, int64(0), ctx["followers"])
	assert.Equal(t, "leo", ctx["author"].(*models.User).Username)
	assert.Equal(t, "reader", ctx["current_user"].(*CurrentUser).Username)

	e.get(t, "/profile/leo/follow/", e.cookie(t, reader))
	e.get(t, "/profile/leo/", e.cookie(t, reader))
	assert.Equal(t, true, e.views.Last().Context["following"])
	assert.Equal(t, int64(1), e.views.Last().Context["followers"])
	assert.Equal(t, int64(0), e.views.Last().Context["follows"])

	e.get(t, "/profile/reader/", "")
	assert.Equal(t, int64(1), e.views.Last().Context["follows"])
}

func TestPostDetail(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	post := testutil.CreatePost(t, e.db, author, nil, "hello there")
	require.NoError(t, e.db.Omit("Post", "Author").Create(&models.Comment{PostID: post.ID, AuthorID: author.ID, Text: "first"}).Error)

	resp := e.get(t, "/posts/"+itoa(post.ID)+"/", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	ctx := e.views.Last().Context
	assert.Equal(t, "posts/post_detail", e.views.Last().Name)
	assert.Equal(t, "hello there", ctx["post"].(*models.Post).Text)
	assert.Equal(t, int64(1), ctx["count"])
	assert.Equal(t, int64(1), ctx["comment_count"])
	assert.Len(t, ctx["comments"], 1)
}

func TestPostCreate(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	group := testutil.CreateGroup(t, e.db, "cats")
	cookie := e.cookie(t, author)

	t.Run("anonymous is sent to login", func(t *testing.T) {
		resp := e.get(t, "/create/", "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/auth/login/?next=/create/", resp.Header.Get("Location"))
	})

	t.Run("form page", func(t *testing.T) {
		resp := e.get(t, "/create/", cookie)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		last := e.views.Last()
		assert.Equal(t, "posts/create_post", last.Name)
		assert.Equal(t, false, last.Context["is_edit"])
	})

	t.Run("valid post", func(t *testing.T) {
		resp := e.postForm(t, "/create/", cookie, url.Values{"text": {"brand new"}, "group": {itoa(group.ID)}})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))

		var post models.Post
		require.NoError(t, e.db.Where("text = ?", "brand new").First(&post).Error)
		assert.Equal(t, author.ID, post.AuthorID)
		require.NotNil(t, post.GroupID)
		assert.Equal(t, group.ID, *post.GroupID)
	})

	t.Run("blank text re-renders the form", func(t *testing.T) {
		before := testutil.CountRows(t, e.db, &models.Post{})
		resp := e.postForm(t, "/create/", cookie, url.Values{"text": {"   "}})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		last := e.views.Last()
		assert.Equal(t, "posts/create_post", last.Name)
		assert.True(t, last.Context["errors"].(forms.Errors).Has("text"))
		assert.Equal(t, before, testutil.CountRows(t, e.db, &models.Post{}))
	})
}

func TestPostCreateWithImage(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	cookie := e.cookie(t, author)

	resp := e.postMultipart(t, "/create/", cookie, map[string]string{"text": "with a picture"}, "small.gif", testutil.SmallGIF())
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	var post models.Post
	require.NoError(t, e.db.Where("text = ?", "with a picture").First(&post).Error)
	assert.True(t, strings.HasPrefix(post.Image, "posts/"), post.Image)

	// the stored file is served back
	img := e.get(t, "/media/"+post.Image, "")
	assert.Equal(t, fiber.StatusOK, img.StatusCode)

	resp = e.postMultipart(t, "/create/", cookie, map[string]string{"text": "not a picture"}, "notes.txt", []byte("plain text"))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	errs := e.views.Last().Context["errors"].(forms.Errors)
	assert.True(t, errs.Has("image"))
}

func TestPostCreateUnsetUploadLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.MediaMaxUploadBytes = 0
	db := testutil.NewDB(t)
	rec := testutil.NewRecordingViews()
	s, err := NewServerWithDeps(cfg, db, nil, WithViews(rec), WithMediaStore(media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)))
	require.NoError(t, err)
	e := &testEnv{s: s, app: s.App(), db: db, views: rec}

	author := testutil.CreateUser(t, db, "leo")
	big := append(testutil.SmallGIF(), make([]byte, forms.DefaultMaxImageBytes)...)

	resp := e.postMultipart(t, "/create/", e.cookie(t, author), map[string]string{"text": "too big"}, "big.gif", big)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	errs := e.views.Last().Context["errors"].(forms.Errors)
	assert.Contains(t, errs.First("image"), "too large")
	assert.Zero(t, testutil.CountRows(t, db, &models.Post{}))
}

func TestPostEdit(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	other := testutil.CreateUser(t, e.db, "other")
	post := testutil.CreatePost(t, e.db, author, nil, "original")
	editURL := "/posts/" + itoa(post.ID) + "/edit/"
	detailURL := "/posts/" + itoa(post.ID) + "/"

	t.Run("author gets the form", func(t *testing.T) {
		resp := e.get(t, editURL, e.cookie(t, author))
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		last := e.views.Last()
		assert.Equal(t, "posts/create_post", last.Name)
		assert.Equal(t, true, last.Context["is_edit"])
	})

	t.Run("someone else is sent to the post", func(t *testing.T) {
		resp := e.get(t, editURL, e.cookie(t, other))
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, detailURL, resp.Header.Get("Location"))

		resp = e.postForm(t, editURL, e.cookie(t, other), url.Values{"text": {"hijacked"}})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, detailURL, resp.Header.Get("Location"))
	})

	t.Run("author saves", func(t *testing.T) {
		resp := e.postForm(t, editURL, e.cookie(t, author), url.Values{"text": {"edited"}})
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, detailURL, resp.Header.Get("Location"))
	})

	var stored models.Post
	require.NoError(t, e.db.First(&stored, post.ID).Error)
	assert.Equal(t, "edited", stored.Text)
	assert.Equal(t, author.ID, stored.AuthorID)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Post{}))
}

func TestAddComment(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	post := testutil.CreatePost(t, e.db, author, nil, "hello")
	commentURL := "/posts/" + itoa(post.ID) + "/comment/"

	resp := e.postForm(t, commentURL, "", url.Values{"text": {"drive-by"}})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next="+commentURL, resp.Header.Get("Location"))
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, &models.Comment{}))

	resp = e.postForm(t, commentURL, e.cookie(t, author), url.Values{"text": {"nice"}})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/posts/"+itoa(post.ID)+"/", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Comment{}))

	resp = e.postForm(t, commentURL, e.cookie(t, author), url.Values{"text": {""}})
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Comment{}))

	resp = e.postForm(t, "/posts/999/comment/", e.cookie(t, author), url.Values{"text": {"lost"}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestFollowing(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	fan := testutil.CreateUser(t, e.db, "fan")
	stranger := testutil.CreateUser(t, e.db, "stranger")
	post := testutil.CreatePost(t, e.db, author, nil, "for my followers")

	resp := e.get(t, "/profile/leo/follow/", e.cookie(t, fan))
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Follow{}))

	// following twice keeps one row
	e.get(t, "/profile/leo/follow/", e.cookie(t, fan))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Follow{}))

	// nobody follows themselves
	e.get(t, "/profile/fan/follow/", e.cookie(t, fan))
	assert.Equal(t, int64(1), testutil.CountRows(t, e.db, &models.Follow{}))

	e.get(t, "/follow/", e.cookie(t, fan))
	items := e.views.Last().PostPage().Items
	require.Len(t, items, 1)
	assert.Equal(t, post.ID, items[0].ID)

	e.get(t, "/follow/", e.cookie(t, stranger))
	assert.Empty(t, e.views.Last().PostPage().Items)

	req := httptest.NewRequest(http.MethodGet, "/profile/leo/unfollow/", nil)
	req.Header.Set("Cookie", e.cookie(t, fan))
	req.Header.Set("Referer", "http://example.com/follow/")
	resp = e.do(t, req)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/follow/", resp.Header.Get("Location"))
	assert.Equal(t, int64(0), testutil.CountRows(t, e.db, &models.Follow{}))

	resp = e.get(t, "/follow/", "")
	assert.Equal(t, "/auth/login/?next=/follow/", resp.Header.Get("Location"))
}

func TestRedirectBackIgnoresForeignReferer(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "leo")
	fan := testutil.CreateUser(t, e.db, "fan")

	req := httptest.NewRequest(http.MethodPost, "/profile/leo/follow/", nil)
	req.Header.Set("Cookie", e.cookie(t, fan))
	req.Header.Set("Referer", "https://evil.test/phish")
	resp := e.do(t, req)
	assert.Equal(t, "/profile/leo/", resp.Header.Get("Location"))
}

func TestIndexCache(t *testing.T) {
	e := newTestEnv(t)
	author := testutil.CreateUser(t, e.db, "leo")
	testutil.CreatePost(t, e.db, author, nil, "first")

	first := e.get(t, "/", "")
	firstBody := readBody(t, first)
	assert.Equal(t, "miss", first.Header.Get("X-Cache"))
	renders := e.views.Count()

	testutil.CreatePost(t, e.db, author, nil, "second")

	second := e.get(t, "/", "")
	assert.Equal(t, "hit", second.Header.Get("X-Cache"))
	assert.Equal(t, firstBody, readBody(t, second))
	assert.Equal(t, renders, e.views.Count())

	require.NoError(t, e.s.ClearPageCache(t.Context()))

	third := e.get(t, "/", "")
	thirdBody := readBody(t, third)
	assert.NotEqual(t, firstBody, thirdBody)
	assert.Contains(t, thirdBody, "second")
}

func TestIndexCacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := newTestEnv(t, WithPageStorage(cache.NewRedisStorage(rdb, cache.PageKeyPrefix)))
	author := testutil.CreateUser(t, e.db, "leo")
	testutil.CreatePost(t, e.db, author, nil, "first")

	first := readBody(t, e.get(t, "/", ""))
	testutil.CreatePost(t, e.db, author, nil, "second")

	mr.FastForward(10 * time.Second)
	assert.Equal(t, first, readBody(t, e.get(t, "/", "")))

	mr.FastForward(11 * time.Second)
	resp := e.get(t, "/", "")
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.Contains(t, readBody(t, resp), "second")
}

func TestIndexCacheIsPerVisitor(t *testing.T) {
	e := newTestEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")

	e.get(t, "/", "")
	resp := e.get(t, "/", e.cookie(t, leo))
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.Equal(t, "leo", e.views.Last().Context["current_user"].(*CurrentUser).Username)
}

func TestAdminClearCache(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.CreateUser(t, e.db, "boss")
	require.NoError(t, e.db.Model(admin).Update("is_admin", true).Error)
	plain := testutil.CreateUser(t, e.db, "plain")

	resp := e.postForm(t, "/admin/cache/clear", "", nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	resp = e.postForm(t, "/admin/cache/clear", e.cookie(t, plain), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	e.get(t, "/", "")
	resp = e.postForm(t, "/admin/cache/clear", e.cookie(t, admin), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"status":"cleared"`)

	assert.Equal(t, "miss", e.get(t, "/", "").Header.Get("X-Cache"))
}

func TestSignupLoginLogout(t *testing.T) {
	e := newTestEnv(t)

	resp := e.postForm(t, "/auth/signup/", "", url.Values{
		"username":  {"newbie"},
		"email":     {"newbie@example.com"},
		"password1": {testutil.Password},
		"password2": {testutil.Password},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	assert.NotEmpty(t, sessionCookie(resp))

	resp = e.postForm(t, "/auth/signup/", "", url.Values{
		"username":  {"newbie"},
		"email":     {"other@example.com"},
		"password1": {testutil.Password},
		"password2": {testutil.Password},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "users/signup", e.views.Last().Name)

	resp = e.postForm(t, "/auth/login/", "", url.Values{"username": {"newbie"}, "password": {"wrong-password"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "users/login", e.views.Last().Name)
	assert.Empty(t, sessionCookie(resp))

	resp = e.postForm(t, "/auth/login/", "", url.Values{
		"username": {"newbie"},
		"password": {testutil.Password},
		"next":     {"/follow/"},
	})
	require.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/follow/", resp.Header.Get("Location"))
	token := sessionCookie(resp)
	require.NotEmpty(t, token)

	cookie := middleware.SessionCookie + "=" + token
	assert.Equal(t, fiber.StatusOK, e.get(t, "/follow/", cookie).StatusCode)

	resp = e.postForm(t, "/auth/logout/", cookie, nil)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			assert.Empty(t, c.Value)
		}
	}
}

func TestLoginRejectsForeignNext(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "leo")

	resp := e.postForm(t, "/auth/login/", "", url.Values{
		"username": {"leo"},
		"password": {testutil.Password},
		"next":     {"https://evil.test/"},
	})
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	resp := e.get(t, "/health/live", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.get(t, "/health/ready", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"database":"healthy"`)
	assert.Contains(t, body, `"redis":"disabled"`)
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c.Value
		}
	}
	return ""
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
