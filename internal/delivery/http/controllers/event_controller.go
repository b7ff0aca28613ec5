package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"reflect"
	"strings"

	"eventbooking/internal/delivery/http/dto"
	"eventbooking/internal/delivery/http/helpers"
	"eventbooking/internal/delivery/http/middleware"
	"eventbooking/internal/domain"
	"eventbooking/internal/metrics"
	"eventbooking/internal/validation"
)

const (
	// maxCreateEventBody bounds the whole multipart request; the image itself is checked against domain.MaxImageSize.
	maxCreateEventBody = 16 << 20
	multipartMemory    = 8 << 20
)

// EventListResponse is the data payload for event list endpoints.
type EventListResponse struct {
	Message string              `json:"message" example:"Events fetched successfully"`
	Events  []dto.EventResponse `json:"events"`
}

// EventListSuccessResponse is the success response envelope for event list endpoints (200).
type EventListSuccessResponse struct {
	Data  EventListResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventDetailResponse is the data payload for single-event endpoints.
type EventDetailResponse struct {
	Message string            `json:"message" example:"Event fetched successfully"`
	Event   dto.EventResponse `json:"event"`
}

// EventDetailSuccessResponse is the success response envelope for single-event endpoints.
type EventDetailSuccessResponse struct {
	Data  EventDetailResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

type EventController struct {
	Logger    *slog.Logger
	Service   domain.EventService
	Uploader  domain.ImageUploader
	Validator *validation.Validator
}

func NewEventController(logger *slog.Logger, svc domain.EventService, uploader domain.ImageUploader, validator *validation.Validator) *EventController {
	return &EventController{
		Logger:    logger,
		Service:   svc,
		Uploader:  uploader,
		Validator: validator,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event, newest first.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error, message carries the failure"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.GetAllEvents(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Event fetching failed: "+err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Message: "Events fetched successfully",
		Events:  dto.NewEventResponses(events),
	})
}

// GetEventBySlug godoc
// @Summary Get an event by slug
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_slug_format"
// @Failure 404 {object} helpers.APIResponse "error.code: event_not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: database_error"
// @Router /events/{slug} [get]
func (c *EventController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(r.PathValue("slug"))
	event, err := c.Service.GetEventBySlug(r.Context(), slug)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteValidationError(w, err)
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeEventNotFound, fmt.Sprintf("Event with slug '%s' not found", slug))
		default:
			c.writeReadFailure(w, r, err, "An unexpected error occurred while fetching the event")
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{
		Message: "Event fetched successfully",
		Event:   dto.NewEventResponse(event),
	})
}

// GetSimilarEvents godoc
// @Summary List events similar to one event
// @Description Returns other events sharing at least one tag. An unknown slug yields an empty list.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Failure 503 {object} helpers.APIResponse "error.code: database_error"
// @Router /events/{slug}/similar [get]
func (c *EventController) GetSimilarEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.GetSimilarEventsBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		c.writeReadFailure(w, r, err, "An unexpected error occurred while fetching similar events")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Message: "Similar events fetched successfully",
		Events:  dto.NewEventResponses(events),
	})
}

// CreateEvent godoc
// @Summary Create an event
// @Description Multipart form. The image is validated (type, then size), tags and agenda are JSON arrays of strings, and all text fields are required. Nothing is uploaded or stored until every check passes. The whole request body is capped at 16MB; a larger body is rejected with bad_request before the image is inspected.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Event image (jpeg, png, webp or gif, at most 5MB)"
// @Param tags formData string true "JSON array of strings"
// @Param agenda formData string true "JSON array of strings"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param overview formData string true "Overview"
// @Param venue formData string true "Venue"
// @Param location formData string true "Location"
// @Param date formData string true "Date"
// @Param time formData string true "Time"
// @Param mode formData string true "online, offline or hybrid"
// @Param audience formData string true "Audience"
// @Param organizer formData string true "Organizer"
// @Param slug formData string false "Slug; derived from title when omitted"
// @Success 201 {object} controllers.EventDetailSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, missing_image, invalid_file_type, file_too_large, invalid_tags, invalid_agenda, missing_field, invalid_mode, invalid_slug_format"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: duplicate_slug"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateEventBody)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest,
				fmt.Sprintf("Request body too large. Maximum size: %dMB", maxCreateEventBody/(1024*1024)))
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "Invalid multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, verr := formImage(r)
	if verr != nil {
		helpers.WriteValidationError(w, verr)
		return
	}
	defer file.Close()

	var in domain.CreateEventInput
	bindForm(r, &in)
	var err error
	if in.Tags, err = parseJSONList(r.FormValue("tags"), "tags", domain.CodeInvalidTags, "Tags are required"); err != nil {
		helpers.WriteValidationError(w, err)
		return
	}
	if in.Agenda, err = parseJSONList(r.FormValue("agenda"), "agenda", domain.CodeInvalidAgenda, "Agenda is required"); err != nil {
		helpers.WriteValidationError(w, err)
		return
	}
	in.Normalize()
	if err := c.Validator.ValidateExcept(in, "Image"); err != nil {
		helpers.WriteValidationError(w, err)
		return
	}

	timer := metrics.NewTimer()
	url, err := c.Uploader.Upload(r.Context(), domain.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	timer.ObserveDuration(metrics.ImageUploadDuration)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Event creation failed: image upload failed")
		return
	}
	in.Image = url

	event, err := c.Service.CreateEvent(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			helpers.WriteValidationError(w, err)
		case errors.Is(err, domain.ErrDuplicateSlug):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeDuplicateSlug, "An event with this slug already exists")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "Event creation failed")
		}
		return
	}
	metrics.EventsCreatedTotal.Inc()
	admin, _ := middleware.SubjectFromContext(r.Context())
	c.Logger.InfoContext(r.Context(), "event created", "slug", event.Slug, "admin", admin)
	helpers.WriteJSONSuccess(w, http.StatusCreated, EventDetailResponse{
		Message: "Event created successfully",
		Event:   dto.NewEventResponse(event),
	})
}

// writeReadFailure maps a read-path infrastructure error to 503 when storage is unreachable, 500 otherwise.
func (c *EventController) writeReadFailure(w http.ResponseWriter, r *http.Request, err error, message string) {
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	if errors.Is(err, domain.ErrStorage) {
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeDatabaseError, "Database connection or query failed")
		return
	}
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, message)
}

// formImage returns the uploaded image after checking presence, then MIME type, then size.
func formImage(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, nil, domain.NewValidationError("image", domain.CodeMissingImage, "Image file is required")
	}
	if !domain.AllowedImageType(header.Header.Get("Content-Type")) {
		file.Close()
		return nil, nil, domain.NewValidationError("image", domain.CodeInvalidFileType,
			"Invalid file type. Allowed types: "+strings.Join(domain.AllowedImageTypes, ", "))
	}
	if header.Size > domain.MaxImageSize {
		file.Close()
		return nil, nil, domain.NewValidationError("image", domain.CodeFileTooLarge,
			fmt.Sprintf("File too large. Maximum size: %dMB", domain.MaxImageSize/(1024*1024)))
	}
	return file, header, nil
}

// parseJSONList decodes a form value holding a JSON array of strings.
func parseJSONList(raw, field, code, required string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidationError(field, code, required+" and must be a valid JSON array")
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return nil, domain.NewValidationError(field, code, "Invalid "+field+" format. Must be a valid JSON array")
	}
	return items, nil
}

// bindForm copies form values into the string fields of dst that carry a form tag.
// Fields tagged form:"-" and unknown form keys are ignored.
func bindForm(r *http.Request, dst *domain.CreateEventInput) {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name := f.Tag.Get("form")
		if name == "" || name == "-" || f.Type.Kind() != reflect.String {
			continue
		}
		v.Field(i).SetString(r.FormValue(name))
	}
}
