package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

// CrimeController handles the /crimes routes.
type CrimeController struct {
	svc  services.CrimeService
	opts Options
}

// NewCrimeController creates a CrimeController backed by svc.
func NewCrimeController(svc services.CrimeService, opts Options) *CrimeController {
	return &CrimeController{svc: svc, opts: opts}
}

// Register mounts the crime routes on g, which already carries the route
// prefix (for example "/api").
func (ctr *CrimeController) Register(g *echo.Group) {
	g.GET("/crimes", ctr.GetCrimes)
	g.POST("/crimes", ctr.CreateCrime)
	g.PUT("/crimes", ctr.UpdateCrime)
	g.DELETE("/crimes", ctr.DeleteCrimeFromCriminal)
}

// GetCrimes handles GET /crimes?nationalId=&id= and GET /crimes?query=&id=.
// With an id and a single match the record is returned as an object.
func (ctr *CrimeController) GetCrimes(c echo.Context) error {
	q := models.CrimeViewQuery{
		NationalID: c.QueryParam("nationalId"),
		Query:      c.QueryParam("query"),
		CrimeID:    c.QueryParam("id"),
	}

	records, err := ctr.svc.GetCrimeView(c.Request().Context(), q)
	if err != nil {
		return ctr.opts.fail(c, err)
	}
	if q.CrimeID != "" && len(records) == 1 {
		return ok(c, http.StatusOK, records[0])
	}
	return ok(c, http.StatusOK, records)
}

// CreateCrime handles POST /crimes with a {crime, criminals[]} body.
func (ctr *CrimeController) CreateCrime(c echo.Context) error {
	var req models.CreateCrimeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	crime, err := ctr.svc.CreateCrimeWithCriminals(c.Request().Context(), req)
	if err != nil {
		return ctr.opts.fail(c, err)
	}
	return ok(c, http.StatusCreated, crime)
}

// UpdateCrime handles PUT /crimes?id= with a partial crime body.
func (ctr *CrimeController) UpdateCrime(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return badRequest(c, "Crime ID is required")
	}

	var patch models.CrimePatch
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest(c, "Request body is required")
		}
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if _, err := ctr.svc.UpdateCrime(c.Request().Context(), id, patch); err != nil {
		return ctr.opts.fail(c, err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "Crime updated successfully"})
}

type unlinkResponse struct {
	Message      string `json:"message"`
	CrimeDeleted bool   `json:"crimeDeleted"`
}

// DeleteCrimeFromCriminal handles DELETE /crimes?nationalId=&crimeId=.
func (ctr *CrimeController) DeleteCrimeFromCriminal(c echo.Context) error {
	res, err := ctr.svc.UnlinkCrimeFromCriminal(
		c.Request().Context(),
		c.QueryParam("nationalId"),
		c.QueryParam("crimeId"),
	)
	if err != nil {
		return ctr.opts.fail(c, err)
	}
	return ok(c, http.StatusOK, unlinkResponse{
		Message:      "Crime removed from criminal successfully",
		CrimeDeleted: res.CrimeDeleted,
	})
}
