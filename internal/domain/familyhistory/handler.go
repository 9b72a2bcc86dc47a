package familyhistory

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /family-history.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/family-history/:patientId", h.Get)
	g.POST("/family-history/:patientId", h.Save)
	g.PUT("/family-history/:patientId", h.Save)
	g.DELETE("/family-history/:patientId", h.Delete)
	g.POST("/family-history/:patientId/member", h.AddMember)
	g.PUT("/family-history/:patientId/member/:index", h.UpdateMember)
	g.DELETE("/family-history/:patientId/member/:index", h.RemoveMember)
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
	return respond.OK(c, h.present.FamilyHistory(out))
}

func (h *Handler) Save(c echo.Context) error {
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
	if c.Request().Method == http.MethodPost {
		return respond.Created(c, h.present.FamilyHistory(out))
	}
	return respond.OK(c, h.present.FamilyHistory(out))
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

func (h *Handler) AddMember(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return err
	}
	var req MemberRequest
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.AddMember(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.FamilyHistory(out))
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, ref, err := target(c)
	if err != nil {
		return err
	}
	var req MemberRequest
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.UpdateMember(c.Request().Context(), id, ref, req)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.FamilyHistory(out))
}

func (h *Handler) RemoveMember(c echo.Context) error {
	id, ref, err := target(c)
	if err != nil {
		return err
	}
	out, err := h.svc.RemoveMember(c.Request().Context(), id, ref)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.FamilyHistory(out))
}

func target(c echo.Context) (uuid.UUID, patient.Ref, error) {
	id, err := patient.ParseID(c.Param("patientId"))
	if err != nil {
		return uuid.Nil, patient.Ref{}, err
	}
	ref, err := patient.ParseRef(c.Param("index"))
	return id, ref, err
}
