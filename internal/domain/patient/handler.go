package patient

import (
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/respond"
	"github.com/ehr/intake/pkg/pagination"
)

// Handler serves the /patients routes.
type Handler struct {
	svc     *Service
	present Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/patients", h.Create)
	g.GET("/patients", h.List)
	g.GET("/patients/:id", h.Get)
	g.PUT("/patients/:id", h.Update)
	g.GET("/patients/:id/completeness", h.Completeness)
	g.GET("/patients/:id/sections/:section", h.GetSection)
}

func (h *Handler) Create(c echo.Context) error {
	var req DemographicsRequest
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Patient(p))
}

func (h *Handler) List(c echo.Context) error {
	pg, err := pagination.Parse(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.List(c.Request().Context(), c.QueryParam("q"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.OK(c, pagination.NewPage(h.present.Patients(items), total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Patient(p))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	var req DemographicsRequest
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	p, err := h.svc.UpdateDemographics(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Patient(p))
}

func (h *Handler) Completeness(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	out, err := h.svc.Completeness(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, out)
}

func (h *Handler) GetSection(c echo.Context) error {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	v, err := h.svc.GetSection(c.Request().Context(), id, c.Param("section"))
	if err != nil {
		return err
	}
	return respond.OK(c, v)
}
