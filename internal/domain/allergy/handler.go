package allergy

import (
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /allergies.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/allergies", h.Create)
	g.GET("/allergies/:id", h.List)
	g.PUT("/allergies/:id", h.Replace)
	g.DELETE("/allergies/:id", h.Clear)
	g.PUT("/allergies/:id/:index", h.UpdateAt)
	g.DELETE("/allergies/:id/:index", h.RemoveAt)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	id, err := req.OwnerID()
	if err != nil {
		return err
	}
	out, err := h.svc.Add(c.Request().Context(), id, req.Allergies)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Allergies(out))
}

func (h *Handler) List(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	out, err := h.svc.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Allergies(out))
}

func (h *Handler) Replace(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	var reqs []Request
	if err := respond.Bind(c, &reqs); err != nil {
		return err
	}
	out, err := h.svc.Replace(c.Request().Context(), id, reqs)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Allergies(out))
}

func (h *Handler) Clear(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	out, err := h.svc.Clear(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Allergies(out))
}

func (h *Handler) UpdateAt(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	ref, err := patient.ParseRef(c.Param("index"))
	if err != nil {
		return err
	}
	var req Request
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.UpdateAt(c.Request().Context(), id, ref, req)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Allergies(out))
}

func (h *Handler) RemoveAt(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	ref, err := patient.ParseRef(c.Param("index"))
	if err != nil {
		return err
	}
	out, err := h.svc.RemoveAt(c.Request().Context(), id, ref)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Allergies(out))
}
