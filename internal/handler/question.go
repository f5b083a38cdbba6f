package handler

import (
	"net/http"
	"strings"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/internal/service"
	"github.com/codequest/backend/pkg/media"
	"github.com/go-chi/chi/v5"
)

// QuestionHandler handles question endpoints.
type QuestionHandler struct {
	questions *service.QuestionService
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(questions *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

// askBody is the JSON form of a question without a video.
type askBody struct {
	Title      string   `json:"questionTitle"`
	Body       string   `json:"questionBody"`
	Tags       []string `json:"questionTags"`
	UserPosted string   `json:"userPosted"`
}

// List handles GET /api/questions.
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.QuestionsAll)
}

// ListVideo handles GET /api/questions/video.
func (h *QuestionHandler) ListVideo(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.QuestionsWithVideo)
}

// ListText handles GET /api/questions/text.
func (h *QuestionHandler) ListText(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.QuestionsTextOnly)
}

func (h *QuestionHandler) list(w http.ResponseWriter, r *http.Request, filter domain.QuestionFilter) {
	questions, err := h.questions.List(r.Context(), filter)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, questions)
}

// Ask handles POST /api/questions. Accepts JSON, or multipart with an optional "video" file.
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var (
		req   domain.AskQuestionRequest
		video *media.Upload
	)

	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			Error(w, err)
			return
		}
		req = domain.AskQuestionRequest{
			Title:      strings.TrimSpace(r.FormValue("questionTitle")),
			Body:       strings.TrimSpace(r.FormValue("questionBody")),
			Tags:       splitTags(r.MultipartForm.Value["questionTags"]),
			UserPosted: strings.TrimSpace(r.FormValue("userPosted")),
		}
		up, err := readUpload(r, "video")
		if err != nil {
			Error(w, err)
			return
		}
		video = up
	} else {
		var body askBody
		if err := DecodeJSON(r, &body); err != nil {
			Error(w, err)
			return
		}
		req = domain.AskQuestionRequest{
			Title:      strings.TrimSpace(body.Title),
			Body:       strings.TrimSpace(body.Body),
			Tags:       body.Tags,
			UserPosted: strings.TrimSpace(body.UserPosted),
		}
	}

	resp, err := h.questions.Ask(r.Context(), userID(r), &req, video)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, resp)
}

// Edit handles PATCH /api/questions/{id}.
func (h *QuestionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	var req domain.EditQuestionRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	q, err := h.questions.Edit(r.Context(), userID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, q)
}

// Delete handles DELETE /api/questions/{id}.
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.questions.Delete(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Question deleted successfully"})
}

// Vote handles PATCH /api/questions/{id}/vote.
func (h *QuestionHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req domain.VoteRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	q, err := h.questions.Vote(r.Context(), userID(r), chi.URLParam(r, "id"), &req)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, q)
}
