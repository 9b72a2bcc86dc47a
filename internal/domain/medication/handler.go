package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/domain/patient"
	"github.com/ehr/intake/internal/platform/respond"
)

// Handler serves /medication-history.
type Handler struct {
	svc *Service
	// Medication rows carry no dates, so the zero Presenter serves.
	present patient.Presenter
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/medication-history", h.Create)
	g.GET("/medication-history/:userId", h.view(h.svc.List))
	g.GET("/medication-history/:userId/active", h.view(h.svc.Active))
	g.GET("/medication-history/:userId/inactive", h.view(h.svc.Inactive))
	g.PUT("/medication-history/:userId", h.Replace)
	g.DELETE("/medication-history/:userId", h.Clear)
	g.PUT("/medication-history/:userId/:index", h.UpdateAt)
	g.DELETE("/medication-history/:userId/:index", h.RemoveAt)
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
	out, err := h.svc.Add(c.Request().Context(), id, req.Medications)
	if err != nil {
		return err
	}
	return respond.Created(c, h.present.Medications(out))
}

func (h *Handler) view(get func(context.Context, uuid.UUID) ([]patient.Medication, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := patient.ParseID(c.Param("userId"))
		if err != nil {
			return err
		}
		out, err := get(c.Request().Context(), id)
		if err != nil {
			return err
		}
		return respond.OK(c, h.present.Medications(out))
	}
}

func (h *Handler) Replace(c echo.Context) error {
	id, err := patient.ParseID(c.Param("userId"))
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
	return respond.OK(c, h.present.Medications(out))
}

func (h *Handler) Clear(c echo.Context) error {
	id, err := patient.ParseID(c.Param("userId"))
	if err != nil {
		return err
	}
	out, err := h.svc.Clear(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond.OK(c, h.present.Medications(out))
}

func (h *Handler) UpdateAt(c echo.Context) error {
	id, err := patient.ParseID(c.Param("userId"))
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
	return respond.OK(c, h.present.Medications(out))
}

func (h *Handler) RemoveAt(c echo.Context) error {
	id, err := patient.ParseID(c.Param("userId"))
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
	return respond.OK(c, h.present.Medications(out))
}
