package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TagHandler struct {
	TagService TagService
}

func NewTagHandler(tagService TagService) *TagHandler {
	return &TagHandler{TagService: tagService}
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	tags, err := h.TagService.ListTags(r.Context(), owner)
	if err != nil {
		handleError(w, r, err, "list_tags")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTagList(tags))
}

func (h *TagHandler) Palette(w http.ResponseWriter, r *http.Request) {
	palette := h.TagService.Palette()
	responseWithBody(w, http.StatusOK, dto.PaletteResponse{Colors: palette, Default: palette.Default()})
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	var request dto.CreateTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TagService.CreateTag(r.Context(), owner, request.Name, request.Color)
	if err != nil {
		handleError(w, r, err, "create_tag")
		return
	}

	logger.Info("HTTP_OUT: tag created",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("tag_id", t.ID.String()))
	responseWithBody(w, http.StatusCreated, dto.FromTag(t))
}

// QuickCreate answers validation problems with a bare {"error": message}
// so inline forms can show it directly.
func (h *TagHandler) QuickCreate(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	var request dto.QuickCreateTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TagService.QuickCreate(r.Context(), owner, request.Name)
	if err != nil {
		var businessErr *service.BusinessError
		if errors.As(err, &businessErr) && businessErr.Code == service.CodeValidation {
			responseWithError(w, http.StatusBadRequest, firstMessage(businessErr))
			return
		}
		handleError(w, r, err, "quick_create_tag")
		return
	}
	responseWithBody(w, http.StatusCreated, dto.TagSummary{ID: t.ID, Name: t.Name, Color: t.Color})
}

func (h *TagHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	tags, err := h.TagService.Autocomplete(r.Context(), owner, r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, err, "autocomplete_tags")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTagSummaries(tags))
}

func (h *TagHandler) BulkEdit(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	var request dto.BulkEditRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := h.TagService.BulkEdit(r.Context(), owner, request.TagIDs, request.Action)
	if err != nil {
		handleError(w, r, err, "bulk_edit_tags")
		return
	}
	if result.Warning != "" {
		logger.Info("HTTP: bulk edit warning",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("warning", result.Warning))
	}
	responseWithBody(w, http.StatusOK, result)
}

// ExportCSV buffers the file so a failing store still yields a JSON error.
func (h *TagHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.TagService.ExportCSV(r.Context(), owner, &buf); err != nil {
		handleError(w, r, err, "export_tags")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tags.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetTag includes the tags most often used together with it.
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	t, err := h.TagService.GetTag(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, err, "get_tag")
		return
	}
	related, err := h.TagService.RelatedTags(r.Context(), owner, id)
	if err != nil {
		handleError(w, r, err, "related_tags")
		return
	}
	responseWithBody(w, http.StatusOK, dto.TagDetailResponse{
		TagResponse: dto.FromTag(t),
		Related:     dto.FromTagBadges(related),
	})
}

func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var request dto.UpdateTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TagService.UpdateTag(r.Context(), owner, id, request.Name, request.Color)
	if err != nil {
		handleError(w, r, err, "update_tag")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTag(t))
}

func (h *TagHandler) RenameTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var request dto.RenameTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TagService.RenameTag(r.Context(), owner, id, request.Name)
	if err != nil {
		handleError(w, r, err, "rename_tag")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTag(t))
}

func (h *TagHandler) RecolorTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var request dto.RecolorTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	t, err := h.TagService.RecolorTag(r.Context(), owner, id, request.Color)
	if err != nil {
		handleError(w, r, err, "recolor_tag")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromTag(t))
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.TagService.DeleteTag(r.Context(), owner, id); err != nil {
		handleError(w, r, err, "delete_tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TagHandler) MergeTag(w http.ResponseWriter, r *http.Request) {
	owner, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var request dto.MergeTagRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if request.TargetID == uuid.Nil {
		handleError(w, r, service.NewValidationError("target_id", "This field is required."), "merge_tag")
		return
	}

	target, err := h.TagService.MergeTags(r.Context(), owner, id, request.TargetID)
	if err != nil {
		handleError(w, r, err, "merge_tag")
		return
	}

	logger.Info("HTTP_OUT: tags merged",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("source_id", id.String()),
		zap.String("target_id", target.ID.String()))
	responseWithBody(w, http.StatusOK, dto.FromTag(target))
}

func firstMessage(err *service.BusinessError) string {
	fields, _ := err.Details["fields"].(map[string][]string)
	for _, key := range []string{"name", "color"} {
		if msgs := fields[key]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	for _, msgs := range fields {
		if len(msgs) > 0 {
			return strings.Join(msgs, " ")
		}
	}
	return err.Message
}
