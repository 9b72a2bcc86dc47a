package medicalhistory

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /medical-history.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

// historyView is the review screen: the history lists plus the
// patient's one allergy list.
type historyView struct {
	patient.MedicalHistoryView
	Allergies []patient.AllergyView `json:"allergies"`
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	for _, k := range Kinds {
		g.POST("/medical-history/"+k, h.create(k))
	}
	g.GET("/medical-history/:patient_id", h.Get)
	g.GET("/medical-history/:patient_id/:kind", h.List)
	g.PUT("/medical-history/:patient_id/:kind", h.Replace)
	g.DELETE("/medical-history/:patient_id/:kind", h.Clear)
	g.PUT("/medical-history/:patient_id/:kind/:index", h.UpdateAt)
	g.DELETE("/medical-history/:patient_id/:kind/:index", h.RemoveAt)
	g.POST("/medical-history/:patient_id/:kind/:index/attachment", h.Attach)
}

func pathRef(c echo.Context) (uuid.UUID, patient.Ref, error) {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return uuid.Nil, patient.Ref{}, err
	}
	ref, err := patient.ParseRef(c.Param("index"))
	return id, ref, err
}

func (h *Handler) create(kindName string) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := respond.ReadBody(c)
		if err != nil {
			return err
		}
		out, err := h.svc.Create(c.Request().Context(), kindName, raw)
		if err != nil {
			return err
		}
		return respond.Created(c, h.present.List(out))
	}
}

func (h *Handler) Get(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, historyView{
		MedicalHistoryView: h.present.MedicalHistory(patient.MedicalHistory{
			Conditions:        v.Conditions,
			Surgeries:         v.Surgeries,
			Immunizations:     v.Immunizations,
			LabReports:        v.LabReports,
			DiagnosticReports: v.DiagnosticReports,
		}),
		Allergies: h.present.Allergies(v.Allergies),
	})
}

func (h *Handler) List(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	out, err := h.svc.List(c.Request().Context(), id, c.Param("kind"))
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.List(out))
}

func (h *Handler) Replace(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	raw, err := respond.ReadBody(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Replace(c.Request().Context(), id, c.Param("kind"), raw)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.List(out))
}

func (h *Handler) Clear(c echo.Context) error {
	id, err := patient.ParseID(c.Param("patient_id"))
	if err != nil {
		return err
	}
	out, err := h.svc.Clear(c.Request().Context(), id, c.Param("kind"))
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.List(out))
}

func (h *Handler) UpdateAt(c echo.Context) error {
	id, ref, err := pathRef(c)
	if err != nil {
		return err
	}
	raw, err := respond.ReadBody(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdateAt(c.Request().Context(), id, c.Param("kind"), ref, raw)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.List(out))
}

func (h *Handler) RemoveAt(c echo.Context) error {
	id, ref, err := pathRef(c)
	if err != nil {
		return err
	}
	out, err := h.svc.RemoveAt(c.Request().Context(), id, c.Param("kind"), ref)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.List(out))
}

func (h *Handler) Attach(c echo.Context) error {
	id, ref, err := pathRef(c)
	if err != nil {
		return err
	}
	fh, err := attachment.FormFile(c)
	if err != nil {
		return err
	}
	file, err := h.svc.AttachReport(c.Request().Context(), id, c.Param("kind"), ref, fh)
	if err != nil {
		return err
	}
	return respond.Created(c, patient.File(file))
}
