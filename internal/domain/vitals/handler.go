package vitals

import (
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /vitals.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/vitals", h.Create)
	g.GET("/vitals/:patientId", h.Get)
	g.PUT("/vitals/:patientId", h.Update)
	g.DELETE("/vitals/:patientId", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req Request
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	id, err := req.OwnerID()
	if err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Vitals(out))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	out, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Vitals(out))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	var req Request
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Vitals(out))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	if err := h.svc.Clear(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, nil)
}
