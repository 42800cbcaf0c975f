package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/iurii2002/CoursesManager/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

const (
	msgWrongFormat = `JSON has a wrong format. Correct format is { "Course Name": "Text", "Date start": "dd/mm/yyyy",` +
		`"Date end": "dd/mm/yyyy", "Number of lectures": Int }`
	msgNotJSON      = "Request was not JSON. Please send JSON"
	msgStored       = "Course data is stored in the database"
	msgAddFailed    = "There was an issue adding your course"
	msgUpdateFailed = "There was an issue updating the course"
	msgDeleteFailed = "There was a problem deleting that course"
	msgShowFailed   = "There was a problem showing that course"
	msgListFailed   = "There was an issue loading the courses"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListCourses)
	r.Get("/search/{text}", h.SearchCourses)
	r.Get("/datefilter/{date1:[0-9]+}/{date2:[0-9]+}", h.FilterCourses)
	r.Post("/add", h.CreateCourse)
	r.Get("/{id:[0-9]+}", h.GetCourse)
	r.Delete("/delete/{id:[0-9]+}", h.DeleteCourse)
	r.Post("/update/{id:[0-9]+}", h.UpdateCourse)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all courses")

	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, 0, err, msgListFailed)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, NewCourseList(courses))
}

func (h *Handler) SearchCourses(w http.ResponseWriter, r *http.Request) {
	text, err := pathParam(r, "text")
	if err != nil {
		httputil.RespondWithText(w, http.StatusBadRequest, "Search text is not a valid path segment")
		return
	}

	h.logger.InfoContext(r.Context(), "searching courses by name", "name", text)
	courses, err := h.service.SearchByName(r.Context(), text)
	if err != nil {
		h.handleServiceError(w, r, 0, err, msgListFailed)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, NewCourseList(courses))
}

func (h *Handler) FilterCourses(w http.ResponseWriter, r *http.Request) {
	date1, err1 := strconv.ParseInt(chi.URLParam(r, "date1"), 10, 64)
	date2, err2 := strconv.ParseInt(chi.URLParam(r, "date2"), 10, 64)
	if err1 != nil || err2 != nil {
		httputil.RespondWithText(w, http.StatusBadRequest, "Dates must be epoch seconds")
		return
	}

	h.logger.InfoContext(r.Context(), "filtering courses by dates", "after", date1, "before", date2)
	courses, err := h.service.FilterByDates(r.Context(), date1, date2)
	if err != nil {
		h.handleServiceError(w, r, 0, err, msgListFailed)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, NewCourseList(courses))
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if !isJSON(r) {
		httputil.RespondWithText(w, http.StatusBadRequest, msgNotJSON)
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	result := ValidateCourse(payload, h.logger)
	if !result.OK() {
		httputil.RespondWithText(w, http.StatusBadRequest, msgWrongFormat+" Problems: "+result.String())
		return
	}

	input := inputFromPayload(payload)
	h.logger.InfoContext(r.Context(), "creating course", "name", input.Name)
	course, err := h.service.CreateCourse(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, 0, err, msgAddFailed)
		return
	}

	h.logger.InfoContext(r.Context(), "course created", "id", course.ID)
	httputil.RespondWithText(w, http.StatusOK, msgStored)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching course by ID", "id", id)
	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, id, err, msgShowFailed)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, NewCourseDetail(course))
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting course", "id", id)
	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		h.handleServiceError(w, r, id, err, msgDeleteFailed)
		return
	}

	httputil.RespondWithText(w, http.StatusOK, fmt.Sprintf("Course %d deleted from the database", id))
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courseID(w, r)
	if !ok {
		return
	}

	// An unknown id is reported before anything about the body.
	exists, err := h.service.CourseExists(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, id, err, msgUpdateFailed)
		return
	}
	if !exists {
		h.respondNotFound(w, r, id)
		return
	}

	if !isJSON(r) {
		httputil.RespondWithText(w, http.StatusBadRequest, msgNotJSON)
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}

	result := ValidateCoursePatch(payload, h.logger)
	if !result.OK() {
		httputil.RespondWithText(w, http.StatusBadRequest, msgWrongFormat+" Problems: "+result.String())
		return
	}

	h.logger.InfoContext(r.Context(), "updating course", "id", id)
	applied, err := h.service.UpdateCourse(r.Context(), id, patchFromPayload(payload))
	if err != nil {
		h.handleServiceError(w, r, id, err, msgUpdateFailed)
		return
	}

	var updated strings.Builder
	for _, field := range applied {
		updated.WriteString(" /" + field + "/")
	}
	httputil.RespondWithText(w, http.StatusOK, fmt.Sprintf("Course data (%s ) is updated in the database", updated.String()))
}

// courseID reads the {id} path segment. Values that overflow int cannot name
// a stored course.
func (h *Handler) courseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		httputil.RespondWithText(w, http.StatusNotFound, "There is no course with the ID "+raw)
		return 0, false
	}
	return id, true
}

// pathParam returns the decoded value of a path parameter. chi matches on
// URL.RawPath when it is set, so those values are still escaped.
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var payload map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&payload); err != nil || payload == nil {
		h.logger.InfoContext(r.Context(), "invalid JSON body", "error", err)
		httputil.RespondWithText(w, http.StatusBadRequest, msgWrongFormat)
		return nil, false
	}
	return payload, true
}

func (h *Handler) respondNotFound(w http.ResponseWriter, r *http.Request, id int) {
	h.logger.InfoContext(r.Context(), "course not found", "id", id)
	httputil.RespondWithText(w, http.StatusNotFound, fmt.Sprintf("There is no course with the ID %d", id))
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, id int, err error, storageMessage string) {
	var dateErr *DateFormatError
	switch {
	case errors.Is(err, ErrCourseNotFound):
		h.respondNotFound(w, r, id)
	case errors.As(err, &dateErr):
		h.logger.InfoContext(r.Context(), "invalid date", "field", dateErr.Field, "value", dateErr.Value)
		httputil.RespondWithText(w, http.StatusBadRequest,
			fmt.Sprintf("Wrong date format in %q, expected dd/mm/yyyy", dateErr.Field))
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoFields):
		h.logger.InfoContext(r.Context(), "invalid input", "error", err)
		httputil.RespondWithText(w, http.StatusBadRequest, msgWrongFormat+" Problems: "+err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "storage error", "error", err)
		httputil.RespondWithText(w, http.StatusBadRequest, storageMessage)
	}
}

// isJSON accepts application/json and application/*+json bodies.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
