package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"roomstay/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type BookingRequest struct {
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type RoomRequest struct {
	Address      string  `json:"address" validate:"required"`
	City         string  `json:"city" validate:"required"`
	State        string  `json:"state" validate:"required"`
	Country      string  `json:"country" validate:"required"`
	Lat          float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng          float64 `json:"lng" validate:"gte=-180,lte=180"`
	Name         string  `json:"name" validate:"required,max=50"`
	Description  string  `json:"description" validate:"required"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	PreviewImage string  `json:"previewImage" validate:"omitempty,url"`
}

func (req RoomRequest) Room() *models.Room {
	return &models.Room{
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		Country:      req.Country,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		PreviewImage: req.PreviewImage,
	}
}

type ReviewRequest struct {
	Review string `json:"review" validate:"required"`
	Stars  int    `json:"stars" validate:"required,min=1,max=5"`
}

type ImageRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// SearchQuery holds the room search parameters after parsing.
type SearchQuery struct {
	Page     *int     `query:"page" validate:"omitempty,gte=1"`
	Size     *int     `query:"size" validate:"omitempty,gte=1"`
	MinLat   *float64 `query:"minLat" validate:"omitempty,gte=-90,lte=90"`
	MaxLat   *float64 `query:"maxLat" validate:"omitempty,gte=-90,lte=90"`
	MinLng   *float64 `query:"minLng" validate:"omitempty,gte=-180,lte=180"`
	MaxLng   *float64 `query:"maxLng" validate:"omitempty,gte=-180,lte=180"`
	MinPrice *float64 `query:"minPrice" validate:"omitempty,gte=0"`
	MaxPrice *float64 `query:"maxPrice" validate:"omitempty,gte=0"`
}

func (q SearchQuery) Filter() models.RoomFilter {
	f := models.RoomFilter{
		MinLat:   q.MinLat,
		MaxLat:   q.MaxLat,
		MinLng:   q.MinLng,
		MaxLng:   q.MaxLng,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.Size != nil {
		f.Size = *q.Size
	}
	return f
}

// parseSearchQuery reads SearchQuery from values. Unparsable numbers are
// reported per field.
func parseSearchQuery(values url.Values) (SearchQuery, map[string]string) {
	var q SearchQuery
	fields := map[string]string{}

	intParam := func(name string) *int {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[name] = name + " must be an integer"
			return nil
		}
		return &n
	}
	floatParam := func(name string) *float64 {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields[name] = name + " must be a number"
			return nil
		}
		return &n
	}

	q.Page = intParam("page")
	q.Size = intParam("size")
	q.MinLat = floatParam("minLat")
	q.MaxLat = floatParam("maxLat")
	q.MinLng = floatParam("minLng")
	q.MaxLng = floatParam("maxLng")
	q.MinPrice = floatParam("minPrice")
	q.MaxPrice = floatParam("maxPrice")
	return q, fields
}

// requestValidator wraps validator.Validate to report fields by their wire names.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &requestValidator{v: v}
}

// Struct validates req and returns per-field messages, or nil when valid.
func (rv *requestValidator) Struct(req any) map[string]string {
	err := rv.v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a valid URL"
	}
	return fe.Field() + " is invalid"
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes the
// 400 response itself and returns false on failure.
func (rv *requestValidator) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	if fields := rv.Struct(dst); fields != nil {
		respond(w, r, http.StatusBadRequest, ErrorResponse{
			Message:    "Validation error",
			StatusCode: http.StatusBadRequest,
			Errors:     fields,
		})
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter. It writes a 404 and
// returns false when the parameter is not an id.
func idParam(w http.ResponseWriter, r *http.Request, name, resource string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusNotFound, resource+" couldn't be found")
		return 0, false
	}
	return id, true
}
