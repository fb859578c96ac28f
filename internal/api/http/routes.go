package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-probability/internal/export"
	"github.com/i474232898/climate-probability/internal/geocode"
	"github.com/i474232898/climate-probability/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, resolver *geocode.Resolver) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"upstream": service.Status().Snapshot(),
			"families": service.Families(),
			"locale":   service.Localizer().Tag().String(),
		})
	})

	v1.Get("/locations/popular", func(c *fiber.Ctx) error {
		return c.JSON(resolver.Popular())
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}
		loc, err := resolver.Resolve(c.UserContext(), q)
		if err != nil {
			return toHTTPError(err)
		}
		return c.JSON(loc)
	})

	v1.Get("/weather/probabilities", func(c *fiber.Ctx) error {
		a, err := analyze(c, service, resolver)
		if err != nil {
			return err
		}
		return c.JSON(a)
	})

	v1.Get("/export/json", func(c *fiber.Ctx) error {
		a, err := analyze(c, service, resolver)
		if err != nil {
			return err
		}
		doc := export.FromAnalysis(a)
		body, err := doc.JSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode export")
		}
		c.Attachment(export.FileName(a.Location, a.DateRange.StartDate, "json"))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.Send(body)
	})

	v1.Get("/export/csv", func(c *fiber.Ctx) error {
		a, err := analyze(c, service, resolver)
		if err != nil {
			return err
		}
		c.Attachment(export.FileName(a.Location, a.DateRange.StartDate, "csv"))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.SendString(export.FromAnalysis(a).CSV())
	})

	v1.Get("/export/summary", func(c *fiber.Ctx) error {
		a, err := analyze(c, service, resolver)
		if err != nil {
			return err
		}
		return c.JSON(export.FromAnalysis(a).Summarize())
	})
}

func analyze(c *fiber.Ctx, service *weather.Service, resolver *geocode.Resolver) (weather.Analysis, error) {
	var req probabilityQuery
	if err := req.bind(c); err != nil {
		return weather.Analysis{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return weather.Analysis{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	loc, err := req.location(c, resolver)
	if err != nil {
		return weather.Analysis{}, toHTTPError(err)
	}

	a, err := service.Analyze(c.UserContext(), loc, req.dateRange())
	if err != nil {
		return weather.Analysis{}, toHTTPError(err)
	}
	return a, nil
}

// probabilityQuery holds the query parameters of the probability and export endpoints.
// A place is given either as coordinates (lat, lng, optional name) or as a free-text q.
type probabilityQuery struct {
	Name      string
	Query     string
	HasCoords bool
	Lat       float64 `validate:"gte=-90,lte=90"`
	Lng       float64 `validate:"gte=-180,lte=180"`
	Start     string  `validate:"required,datetime=2006-01-02"`
	End       string  `validate:"required,datetime=2006-01-02"`
	Hour      *int    `validate:"omitempty,gte=0,lte=23"`
}

func (p *probabilityQuery) bind(c *fiber.Ctx) error {
	p.Name = strings.TrimSpace(c.Query("name"))
	p.Query = strings.TrimSpace(c.Query("q"))

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	switch {
	case latStr != "" && lngStr != "":
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return errors.New("lat must be a number")
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return errors.New("lng must be a number")
		}
		p.Lat, p.Lng, p.HasCoords = lat, lng, true
	case latStr != "" || lngStr != "":
		return errors.New("lat and lng must be given together")
	case p.Query == "":
		return errors.New("either q or lat and lng query parameters are required")
	}

	p.Start = c.Query("start")
	p.End = c.Query("end", p.Start)

	if h := c.Query("hour"); h != "" {
		hour, err := strconv.Atoi(h)
		if err != nil {
			return errors.New("hour must be an integer")
		}
		p.Hour = &hour
	}
	return nil
}

func (p probabilityQuery) location(c *fiber.Ctx, resolver *geocode.Resolver) (weather.Location, error) {
	if !p.HasCoords {
		return resolver.Resolve(c.UserContext(), p.Query)
	}
	name := p.Name
	if name == "" {
		name = strconv.FormatFloat(p.Lat, 'f', 4, 64) + ", " + strconv.FormatFloat(p.Lng, 'f', 4, 64)
	}
	return weather.Location{Name: name, Latitude: p.Lat, Longitude: p.Lng}, nil
}

func (p probabilityQuery) dateRange() weather.DateRange {
	return weather.DateRange{StartDate: p.Start, EndDate: p.End, Hour: p.Hour}
}
