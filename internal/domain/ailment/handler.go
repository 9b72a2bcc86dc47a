package ailment

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /ailments and the /assessment view of the same list.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/ailments/:patient_id", h.Add)
	g.POST("/ailments/:patient_id/bulk", h.Replace)
	g.GET("/ailments/:patient_id", h.List)
	g.PUT("/ailments/:patient_id", h.Replace)
	g.DELETE("/ailments/:patient_id", h.Clear)
	g.PUT("/ailments/:patient_id/:index", h.UpdateAt)
	g.DELETE("/ailments/:patient_id/:index", h.RemoveAt)

	g.POST("/assessment/:patient_id", h.Add)
	g.GET("/assessment/:patient_id", h.List)
	g.DELETE("/assessment/:patient_id", h.Clear)
	g.PUT("/assessment/:patient_id/:index", h.UpdateAt)
	g.DELETE("/assessment/:patient_id/:index", h.RemoveAt)
	g.POST("/assessment/:patient_id/:index/test-results", h.AttachTestResult)
}

func pathRef(c echo.Context) (uuid.UUID, patient.Ref, error) {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return uuid.Nil, patient.Ref{}, err
	}
	ref, err := patient.ParseRef(c.Param("index"))
	return id, ref, err
}

func (h *Handler) Add(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	var req Request
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	out, err := h.svc.Add(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Ailments(out))
}

func (h *Handler) Replace(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
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
	return respond.OK(c, h.present.Ailments(out))
}

func (h *Handler) List(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	out, err := h.svc.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Ailments(out))
}

func (h *Handler) Clear(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	if err := h.svc.Clear(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, []patient.AilmentView{})
}

func (h *Handler) UpdateAt(c echo.Context) error {
	id, ref, err := pathRef(c)
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
	return respond.OK(c, h.present.Ailments(out))
}

func (h *Handler) RemoveAt(c echo.Context) error {
	id, ref, err := pathRef(c)
	if err != nil {
		return err
	}
	out, err := h.svc.RemoveAt(c.Request().Context(), id, ref)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Ailments(out))
}

func (h *Handler) AttachTestResult(c echo.Context) error {
	id, ref, err := pathRef(c)
	if err != nil {
		return err
	}
	fh, err := attachment.FormFile(c)
	if err != nil {
		return err
	}
	file, err := h.svc.AttachTestResult(c.Request().Context(), id, ref, fh)
	if err != nil {
		return err
	}
	return respond.Created(c, patient.File(file))
}
