package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	authmw "github.com/minjun0702/nodeskillproject/internal/adapters/http/middleware"
	"github.com/minjun0702/nodeskillproject/internal/domain"
	"github.com/minjun0702/nodeskillproject/internal/usecase"
	res "github.com/minjun0702/nodeskillproject/pkg/http"
)

type ResumeHandler struct {
	service usecase.ResumeService
}

func NewResumeHandler(s usecase.ResumeService) *ResumeHandler { return &ResumeHandler{service: s} }

type createResumeRequest struct {
	Title   string `json:"title"`
	AboutMe string `json:"aboutMe"`
}

type updateResumeRequest struct {
	Title   string `json:"title"`
	AboutMe string `json:"aboutMe"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// resumeView is the list/detail shape: the resume joined with its author's
// name, never the author's credentials.
type resumeView struct {
	ResumeID  uint                `json:"resumeId"`
	Name      string              `json:"name"`
	Title     string              `json:"title"`
	AboutMe   string              `json:"aboutMe"`
	Status    domain.ResumeStatus `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

func viewOf(r *domain.Resume) resumeView {
	v := resumeView{
		ResumeID:  r.ID,
		Title:     r.Title,
		AboutMe:   r.AboutMe,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		v.Name = r.User.Name
	}
	return v
}

func (h *ResumeHandler) Create(c echo.Context) error {
	req := new(createResumeRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid payload")
	}
	user := currentUser(c)
	resume, err := h.service.Create(c.Request().Context(), requestIDFromCtx(c), user, req.Title, req.AboutMe)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusCreated, "resume created", resume)
}

func (h *ResumeHandler) List(c echo.Context) error {
	user := currentUser(c)
	resumes, err := h.service.List(c.Request().Context(), user, c.QueryParam("status"), c.QueryParam("sort"))
	if err != nil {
		return fail(c, err)
	}
	views := make([]resumeView, 0, len(resumes))
	for i := range resumes {
		views = append(views, viewOf(&resumes[i]))
	}
	return res.JSON(c, http.StatusOK, "", views)
}

func (h *ResumeHandler) Get(c echo.Context) error {
	id, err := resumeID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid resume id")
	}
	resume, err := h.service.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "", viewOf(resume))
}

func (h *ResumeHandler) Update(c echo.Context) error {
	id, err := resumeID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid resume id")
	}
	req := new(updateResumeRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid payload")
	}
	resume, err := h.service.Update(c.Request().Context(), requestIDFromCtx(c), currentUser(c), id, req.Title, req.AboutMe)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "resume updated", resume)
}

func (h *ResumeHandler) Delete(c echo.Context) error {
	id, err := resumeID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid resume id")
	}
	deleted, err := h.service.Delete(c.Request().Context(), requestIDFromCtx(c), currentUser(c), id)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "resume deleted", map[string]uint{"id": deleted})
}

func (h *ResumeHandler) UpdateStatus(c echo.Context) error {
	id, err := resumeID(c)
	if err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid resume id")
	}
	req := new(updateStatusRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "invalid payload")
	}
	entry, err := h.service.UpdateStatus(c.Request().Context(), requestIDFromCtx(c), currentUser(c), id, domain.ResumeStatus(req.Status), req.Reason)
	if err != nil {
		return fail(c, err)
	}
	return res.JSON(c, http.StatusOK, "resume status updated", entry)
}

func currentUser(c echo.Context) *domain.User {
	return c.Get(authmw.UserContextKey).(*domain.User)
}

func resumeID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
