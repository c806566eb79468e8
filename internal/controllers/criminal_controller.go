package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ahmedSabbahMohamed/police-app-v2/internal/models"
	"github.com/ahmedSabbahMohamed/police-app-v2/internal/services"
)

// CriminalController handles the criminal lookup and search routes.
type CriminalController struct {
	svc  services.CrimeService
	opts Options
}

// NewCriminalController creates a new instance of CriminalController
func NewCriminalController(svc services.CrimeService, opts Options) *CriminalController {
	return &CriminalController{svc: svc, opts: opts}
}

// Register registers the routes for the criminal controller
func (ctrl *CriminalController) Register(g *echo.Group) {
	g.GET("/criminal", ctrl.LookupCriminals)
	g.POST("/criminal", ctrl.AddCrime)
	g.GET("/search", ctrl.SearchCriminals)
}

func searchFilter(c echo.Context) models.SearchFilter {
	return models.SearchFilter{
		NationalID: c.QueryParam("nationalId"),
		Name:       c.QueryParam("name"),
		StageName:  c.QueryParam("stageName"),
	}
}

// LookupCriminals returns id, name, national id and alias of each match.
func (ctrl *CriminalController) LookupCriminals(c echo.Context) error {
	summaries, err := ctrl.svc.LookupCriminals(c.Request().Context(), searchFilter(c))
	if err != nil {
		return ctrl.opts.fail(c, err)
	}
	return ok(c, http.StatusOK, summaries)
}

// SearchCriminals returns every match together with its crimes.
func (ctrl *CriminalController) SearchCriminals(c echo.Context) error {
	results, err := ctrl.svc.SearchCriminals(c.Request().Context(), searchFilter(c))
	if err != nil {
		return ctrl.opts.fail(c, err)
	}
	return ok(c, http.StatusOK, results)
}

// AddCrime handles POST /criminal?nationalId= with the crime fields as body.
func (ctrl *CriminalController) AddCrime(c echo.Context) error {
	nationalID := c.QueryParam("nationalId")
	if nationalID == "" {
		return badRequest(c, "National ID is required.")
	}

	var in models.AddCrimeInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := ctrl.svc.AddCrimeToExistingCriminal(c.Request().Context(), nationalID, in); err != nil {
		return ctrl.opts.fail(c, err)
	}
	return c.JSON(http.StatusCreated, Envelope{
		Success: true,
		Data:    echo.Map{"message": "Crime added to criminal successfully!"},
	})
}
