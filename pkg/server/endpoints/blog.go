package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/render"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// PostResponse is the body of GET /api/blog/{slug}
type PostResponse struct {
	Post        *model.BlogPost `json:"post"`
	ContentHTML string          `json:"content_html"`
}

// RegisterBlogEndpoints registers the /api/blog routes. Reads are public,
// writes need an admin.
func RegisterBlogEndpoints(s *server.Server) {
	errs := newErrorWriter(s)
	posts := s.Blog
	router := s.Router.PathPrefix("/api/blog").Subrouter()

	router.HandleFunc("", handleListPosts(posts, errs)).Methods("GET")
	router.HandleFunc("/{slug}", handleGetPost(posts, errs)).Methods("GET")
	router.Handle("", s.Auth.Admin(handleCreatePost(posts, errs))).Methods("POST")
	router.Handle("/{slug}", s.Auth.Admin(handleUpdatePost(posts, errs))).Methods("PUT")
	router.Handle("/{slug}", s.Auth.Admin(handleDeletePost(posts, errs))).Methods("DELETE")
}

func postError(err error, slug string) error {
	switch {
	case errors.Is(err, store.ErrPostNotFound):
		return apperr.NotFound("Blog post with slug '%s' not found", slug)
	case errors.Is(err, store.ErrDuplicateSlug):
		return apperr.Conflict(err, "Blog post with slug '%s' already exists", slug)
	case errors.Is(err, store.ErrConstraint):
		return err
	default:
		return apperr.Internal(err)
	}
}

func handleListPosts(posts store.BlogStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := posts.ListPosts()
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}
		if list == nil {
			list = []model.BlogPost{}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"count": len(list),
			"posts": list,
		})
	}
}

func handleGetPost(posts store.BlogStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		post, err := posts.FetchPost(slug)
		if err != nil {
			errs.respond(w, r, postError(err, slug))
			return
		}

		html, err := render.Markdown(post.Content)
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		respondWithJSON(w, http.StatusOK, PostResponse{Post: post, ContentHTML: html})
	}
}

func handleCreatePost(posts store.BlogStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPostRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, createPostMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		post := &model.BlogPost{
			Slug:    req.Slug,
			Title:   req.Title,
			Summary: req.Summary,
			Content: req.Content,
			Pillar:  req.Pillar,
			Date:    req.Date,
		}
		if err := posts.CreatePost(post); err != nil {
			errs.respond(w, r, postError(err, req.Slug))
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Blog post created successfully",
			"post":    post,
		})
	}
}

func handleUpdatePost(posts store.BlogStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		var req updatePostRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, updatePostMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		update := store.BlogPostUpdate{
			Title:   req.Title,
			Summary: req.Summary,
			Content: req.Content,
			Pillar:  req.Pillar,
			Date:    req.Date,
		}
		if update.Empty() {
			errs.respond(w, r, apperr.Validation("At least one field must be provided for update"))
			return
		}

		post, err := posts.UpdatePost(slug, update)
		if err != nil {
			errs.respond(w, r, postError(err, slug))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Blog post updated successfully",
			"post":    post,
		})
	}
}

func handleDeletePost(posts store.BlogStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		if err := posts.DeletePost(slug); err != nil {
			errs.respond(w, r, postError(err, slug))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Blog post deleted successfully",
			"slug":    slug,
		})
	}
}
