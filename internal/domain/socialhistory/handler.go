package socialhistory

import (
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /social-history.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/social-history/:patientId", h.Get)
	g.PUT("/social-history/:patientId/:sub", h.Save)
	g.DELETE("/social-history/:patientId/:sub", h.Clear)
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
	return respond.OK(c, h.present.SocialHistory(out))
}

func (h *Handler) Save(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	sub, err := ParseSub(c.Param("sub"))
	if err != nil {
		return err
	}
	raw, err := respond.ReadBody(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Save(c.Request().Context(), id, sub, raw)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.SocialEntry(out))
}

func (h *Handler) Clear(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	sub, err := ParseSub(c.Param("sub"))
	if err != nil {
		return err
	}
	out, err := h.svc.Clear(c.Request().Context(), id, sub)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.SocialHistory(out))
}
