package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jonathan/employee-directory/internal/export"
	"github.com/jonathan/employee-directory/internal/forms"
	"github.com/jonathan/employee-directory/internal/types"
	"github.com/jonathan/employee-directory/internal/validation"
)

const (
	maxBodyBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

// Directory is the set of directory operations the API exposes.
// *directory.Service satisfies it.
type Directory interface {
	ListEmployees(ctx context.Context, page, perPage int) (*types.EmployeePage, error)
	GetEmployee(ctx context.Context, id string) (*types.Employee, error)
	CreateEmployee(ctx context.Context, form types.CreateForm) (*types.Employee, error)
	UpdateEmployee(ctx context.Context, id string, patch types.Patch) (*types.Employee, error)
	UpdateProfile(ctx context.Context, id string, form types.ProfileForm) (*types.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	SearchEmployees(ctx context.Context, text string) ([]types.Employee, error)
	Dashboard(ctx context.Context) (*types.Dashboard, error)
	Validate(form types.CreateForm) validation.Errors
	AllEmployees(ctx context.Context, perPage int) ([]types.Employee, error)
}

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := intParam(r.URL.Query(), "page", 1)
	if err != nil {
		s.writeError(w, err)
		return
	}
	perPage, err := intParam(r.URL.Query(), "perPage", s.perPage)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.directory.ListEmployees(r.Context(), page, perPage)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := s.directory.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, emp)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := s.readCreateForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cleanup()

	emp, err := s.directory.CreateEmployee(r.Context(), form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/employees/"+url.PathEscape(emp.ID))
	s.jsonResponse(w, http.StatusCreated, emp)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var patch types.Patch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	if len(patch) == 0 {
		s.writeError(w, &ErrBadRequest{Message: "patch must change at least one field"})
		return
	}

	emp, err := s.directory.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, emp)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var form types.ProfileForm
	switch mediaType(r) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		values, err := parseFormValues(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if form, err = forms.DecodeProfileForm(values); err != nil {
			s.writeError(w, &ErrBadRequest{Message: "invalid form", Cause: err})
			return
		}
	default:
		if err := decodeJSON(r, &form); err != nil {
			s.writeError(w, err)
			return
		}
	}

	emp, err := s.directory.UpdateProfile(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, emp)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("q")
	items, err := s.directory.SearchEmployees(r.Context(), text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"query": text,
		"items": items,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.directory.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, dash)
}

// handleValidate checks a create form without storing it.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	form, cleanup, err := s.readCreateForm(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cleanup()

	errs := s.directory.Validate(form)
	if errs == nil {
		errs = validation.Errors{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// handleExport streams the whole directory as a spreadsheet or a PDF roster.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "pdf" {
		s.writeError(w, &ErrBadRequest{Message: "format must be xlsx or pdf"})
		return
	}

	employees, err := s.directory.AllEmployees(r.Context(), s.perPage)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "pdf" {
		contentType = "application/pdf"
		err = export.WriteRosterPDF(&buf, "Employee Directory", employees, time.Now())
	} else {
		err = export.WriteXLSX(&buf, employees)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "employees." + format}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// readCreateForm accepts a JSON body, a urlencoded form, or a multipart form
// with an optional profile_picture file. cleanup releases the upload.
func (s *Server) readCreateForm(r *http.Request) (types.CreateForm, func(), error) {
	noop := func() {}

	switch mediaType(r) {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return types.CreateForm{}, noop, &ErrBadRequest{Message: "invalid multipart form", Cause: err}
		}
		form, err := forms.DecodeCreateForm(r.MultipartForm.Value)
		if err != nil {
			return types.CreateForm{}, noop, &ErrBadRequest{Message: "invalid form", Cause: err}
		}

		file, header, err := r.FormFile("profile_picture")
		switch {
		case errors.Is(err, http.ErrMissingFile):
			return form, noop, nil
		case err != nil:
			return types.CreateForm{}, noop, &ErrBadRequest{Message: "invalid profile picture", Cause: err}
		}
		form.ProfilePicture = &types.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Content:     file,
		}
		return form, func() {
			_ = file.Close()
			_ = r.MultipartForm.RemoveAll()
		}, nil

	case "application/x-www-form-urlencoded":
		values, err := parseFormValues(r)
		if err != nil {
			return types.CreateForm{}, noop, err
		}
		form, err := forms.DecodeCreateForm(values)
		if err != nil {
			return types.CreateForm{}, noop, &ErrBadRequest{Message: "invalid form", Cause: err}
		}
		return form, noop, nil

	default:
		var form types.CreateForm
		if err := decodeJSON(r, &form); err != nil {
			return types.CreateForm{}, noop, err
		}
		if form.Skills == nil {
			form.Skills = []string{}
		}
		if form.NotificationPreferences == nil {
			form.NotificationPreferences = []string{}
		}
		return form, noop, nil
	}
}

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

func parseFormValues(r *http.Request) (url.Values, error) {
	if mediaType(r) == "multipart/form-data" {
		r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, &ErrBadRequest{Message: "invalid multipart form", Cause: err}
		}
		// Only the text values are used; spooled file parts go now.
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		return r.MultipartForm.Value, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, &ErrBadRequest{Message: "invalid form", Cause: err}
	}
	return r.PostForm, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &ErrBadRequest{Message: "request body is empty"}
		}
		return &ErrBadRequest{Message: "invalid JSON body", Cause: err}
	}
	return nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ErrBadRequest{Message: "invalid " + name + " parameter", Cause: err}
	}
	return n, nil
}
