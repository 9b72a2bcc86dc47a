package insurance

import (
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/attachment"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /insurance-information.
type Handler struct {
	svc     *Service
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc, present: patient.NewPresenter(svc.opts)}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/insurance-information", h.Create)
	g.GET("/insurance-information/:id", h.Get)
	g.PUT("/insurance-information/:id", h.Update)
	g.DELETE("/insurance-information/:id", h.Delete)
	g.POST("/insurance-information/:id/upload-card", h.UploadCard)
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
	ins, err := h.svc.Save(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Insurance(ins))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	ins, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Insurance(ins))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	var req Request
	if err := respond.Bind(c, &req); err != nil {
		return err
	}
	ins, err := h.svc.Save(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Insurance(ins))
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond.OK(c, nil)
}

func (h *Handler) UploadCard(c echo.Context) error {
	id, err := patient.ParseID(c.Param("id"))
	if err != nil {
		return err
	}
	fh, err := attachment.FormFile(c)
	if err != nil {
		return err
	}
	ref, err := h.svc.UploadCard(c.Request().Context(), id, fh)
	if err != nil {
		return err
	}
	return respond.Created(c, patient.File(ref))
}
