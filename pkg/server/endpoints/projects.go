package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// RegisterProjectsEndpoints registers the /api/projects routes
func RegisterProjectsEndpoints(s *server.Server) {
	errs := newErrorWriter(s)
	projects := s.Projects
	router := s.Router.PathPrefix("/api/projects").Subrouter()

	router.HandleFunc("", handleListProjects(projects, errs)).Methods("GET")
	router.HandleFunc("/{slug}", handleGetProject(projects, errs)).Methods("GET")
	router.Handle("", s.Auth.Admin(handleCreateProject(projects, errs))).Methods("POST")
	router.Handle("/{slug}", s.Auth.Admin(handleUpdateProject(projects, errs))).Methods("PUT")
	router.Handle("/{slug}", s.Auth.Admin(handleDeleteProject(projects, errs))).Methods("DELETE")
}

func projectError(err error, slug string) error {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		return apperr.NotFound("Project with slug '%s' not found", slug)
	case errors.Is(err, store.ErrDuplicateSlug):
		return apperr.Conflict(err, "Project with slug '%s' already exists", slug)
	case errors.Is(err, store.ErrConstraint):
		return err
	default:
		return apperr.Internal(err)
	}
}

func handleListProjects(projects store.ProjectsStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := projects.ListProjects()
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}
		if list == nil {
			list = []model.Project{}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(list),
			"projects": list,
		})
	}
}

func handleGetProject(projects store.ProjectsStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		project, err := projects.FetchProject(slug)
		if err != nil {
			errs.respond(w, r, projectError(err, slug))
			return
		}
		respondWithJSON(w, http.StatusOK, project)
	}
}

func handleCreateProject(projects store.ProjectsStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createProjectRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, createProjectMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		tags := model.Tags(req.Tags)
		if tags == nil {
			tags = model.Tags{}
		}
		project := &model.Project{
			Slug:      req.Slug,
			Title:     req.Title,
			Summary:   req.Summary,
			Content:   req.Content,
			Tags:      tags,
			Thumbnail: req.Thumbnail,
			Date:      req.Date,
		}
		if err := projects.CreateProject(project); err != nil {
			errs.respond(w, r, projectError(err, req.Slug))
			return
		}

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Project created successfully",
			"project": project,
		})
	}
}

func handleUpdateProject(projects store.ProjectsStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		var req updateProjectRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, updateProjectMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		update := store.ProjectUpdate{
			Title:     req.Title,
			Summary:   req.Summary,
			Content:   req.Content,
			Thumbnail: req.Thumbnail,
			Date:      req.Date,
		}
		if req.Tags != nil {
			tags := model.Tags(*req.Tags)
			if tags == nil {
				tags = model.Tags{}
			}
			update.Tags = &tags
		}
		if update.Empty() {
			errs.respond(w, r, apperr.Validation("At least one field must be provided for update"))
			return
		}

		project, err := projects.UpdateProject(slug, update)
		if err != nil {
			errs.respond(w, r, projectError(err, slug))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Project updated successfully",
			"project": project,
		})
	}
}

func handleDeleteProject(projects store.ProjectsStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := mux.Vars(r)["slug"]

		if err := projects.DeleteProject(slug); err != nil {
			errs.respond(w, r, projectError(err, slug))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Project deleted successfully",
			"slug":    slug,
		})
	}
}
