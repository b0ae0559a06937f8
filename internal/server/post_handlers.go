package server

import (
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index lists every post, newest first.
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.Index(c.UserContext(), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/index", fiber.Map{
		"title":    "Latest updates",
		"page_obj": page,
	})
}

// GroupList lists the posts filed under a group.
func (s *Server) GroupList(c *fiber.Ctx) error {
	group, page, err := s.postService.GroupPosts(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/group_list", fiber.Map{
		"title":    group.Title,
		"group":    group,
		"page_obj": page,
	})
}

// Profile lists an author's posts.
func (s *Server) Profile(c *fiber.Ctx) error {
	var viewerID uint
	if uid, ok := middleware.CurrentUserID(c); ok {
		viewerID = uid
	}

	view, err := s.postService.Profile(c.UserContext(), c.Params("username"), c.Query("page"), viewerID)
	if err != nil {
		return err
	}
	title := view.Author.FullName()
	if title == "" {
		title = view.Author.Username
	}
	return s.render(c, "posts/profile", fiber.Map{
		"title":     "Profile of " + title,
		"author":    view.Author,
		"page_obj":  view.Page,
		"count":     view.Count,
		"following": view.Following,
		"followers": view.Followers,
		"follows":   view.Follows,
	})
}

// PostDetail shows one post with its comments.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	view, err := s.postService.Detail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return s.render(c, "posts/post_detail", fiber.Map{
		"title":         "Post " + view.Post.Excerpt(30),
		"post":          view.Post,
		"comments":      view.Comments,
		"count":         view.Count,
		"comment_count": view.CommentCount,
		"form":          forms.NewCommentForm(forms.CommentInput{}, nil),
	})
}

// PostCreatePage renders an empty post form.
func (s *Server) PostCreatePage(c *fiber.Ctx) error {
	return s.renderPostForm(c, nil, forms.PostInput{}, nil)
}

// PostCreate stores a post by the signed-in user.
func (s *Server) PostCreate(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	in, err := postInput(c, s.config.MediaMaxUploadBytes)
	if err != nil {
		return err
	}

	_, err = s.postService.Create(c.UserContext(), user.ID, in)
	if errs, ok := service.FormErrors(err); ok {
		return s.renderPostForm(c, nil, in, errs)
	}
	if err != nil {
		return err
	}
	return c.Redirect(profileURL(user.Username), fiber.StatusFound)
}

// PostEditPage renders the post form pre-filled. Only the author gets it;
// everyone else is sent to the post.
func (s *Server) PostEditPage(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}

	post, err := s.postService.ForEdit(c.UserContext(), user.ID, id)
	if models.HasCode(err, models.CodeForbidden) {
		return c.Redirect(postURL(id), fiber.StatusFound)
	}
	if err != nil {
		return err
	}
	return s.renderPostForm(c, post, forms.PostInputFrom(post), nil)
}

// PostEdit updates a post in place.
func (s *Server) PostEdit(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	id, err := parsePostID(c)
	if err != nil {
		return err
	}
	in, err := postInput(c, s.config.MediaMaxUploadBytes)
	if err != nil {
		return err
	}

	_, err = s.postService.Edit(c.UserContext(), user.ID, id, in)
	if models.HasCode(err, models.CodeForbidden) {
		return c.Redirect(postURL(id), fiber.StatusFound)
	}
	if errs, ok := service.FormErrors(err); ok {
		post, lerr := s.postService.ForEdit(c.UserContext(), user.ID, id)
		if lerr != nil {
			return lerr
		}
		return s.renderPostForm(c, post, in, errs)
	}
	if err != nil {
		return err
	}
	return c.Redirect(postURL(id), fiber.StatusFound)
}

// renderPostForm draws create_post. post is nil when creating.
func (s *Server) renderPostForm(c *fiber.Ctx, post *models.Post, in forms.PostInput, errs forms.Errors) error {
	groups, err := s.postService.Groups(c.UserContext())
	if err != nil {
		return err
	}
	if errs == nil {
		errs = forms.Errors{}
	}

	form := forms.NewPostForm(in, groups, errs)
	bind := fiber.Map{
		"title":   "New post",
		"form":    form,
		"errors":  errs,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		form.HasImage = post.Image != ""
		bind["form"] = form
		bind["title"] = "Edit post"
		bind["post"] = post
	}
	return s.render(c, "posts/create_post", bind)
}

// FollowIndex lists posts by the authors the visitor follows.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	user, err := mustUser(c)
	if err != nil {
		return err
	}
	page, err := s.postService.FollowFeed(c.UserContext(), user.ID, c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, "posts/follow", fiber.Map{
		"title":    "Following",
		"page_obj": page,
	})
}
