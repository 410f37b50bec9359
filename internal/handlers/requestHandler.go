package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avanth/docuquery/internal/adapter"
	"github.com/avanth/docuquery/internal/adapter/utils"
	"github.com/avanth/docuquery/internal/api"
	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/domain/docModel"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/internal/rag/extract"
	"github.com/avanth/docuquery/pkg/logger_i"
)

var logRH *logger_i.Logger

const maxUploadSize = 32 << 20 //32mb

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadDocumentHandler godoc
// @Summary      Upload a document
// @Description  Receives a file via multipart/form-data, stores it, creates the document record, and queues an extraction job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document_name  formData  string  false  "Display name, defaults to the uploaded file name"
// @Param        document       formData  file    true   "The PDF, DOCX, TXT, RTF or ODT file to upload"
// @Success      202  {object}  api.UploadDocumentResponse "Accepted - document stored, extraction queued"
// @Failure      400  {object}  api.JobResponse "Bad Request - missing file or unsupported type"
// @Failure      413  {object}  api.JobResponse "Payload Too Large - file exceeds the upload limit"
// @Failure      500  {object}  api.JobResponse "Internal Server Error - storage failure"
// @Router       /documents [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := r.FormValue("document_name")
	if docName == "" {
		docName = fileMetadata.Filename
	}

	contentType := extract.DocTypeOf(fileMetadata.Filename)
	if contentType == docModel.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, docName, "Unsupported document type")
		return
	}

	// read one byte past the cap so an oversized file is rejected, not truncated
	data, err := io.ReadAll(io.LimitReader(fileReader, maxUploadSize+1))
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Read error")
		return
	}
	if len(data) > maxUploadSize {
		WriteErrorResponse(w, http.StatusRequestEntityTooLarge, docName, "File exceeds the 32MB upload limit")
		return
	}

	locator, err := handlerInstance.blobs.Save(r.Context(), fileMetadata.Filename, data)
	if err != nil {
		logRH.Error("Failed to store upload", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	doc := docModel.Document{
		Id:          utils.GetNewUUID(),
		OwnerId:     ownerFromRequest(r),
		Name:        docName,
		StoragePath: locator,
		ContentType: contentType,
		Status:      docModel.StatusPending,
		UploadedAt:  time.Now(),
	}
	if err := handlerInstance.docs.CreateDocument(r.Context(), doc); err != nil {
		logRH.Error("Failed to create document record", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, docName, "Storage error")
		return
	}

	jobId := CreateNewJob(doc.Id, doc.Name, traceFromRequest(r))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc.Id, jobId))
}

// ReprocessDocumentHandler godoc
// @Summary      Re-run extraction for a document
// @Description  Resets the document to pending, discarding previous extraction results, and queues a fresh job.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.UploadDocumentResponse "Accepted - extraction queued"
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id}/process [post]
func ReprocessDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.docs.GetDocument(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}

	if err := handlerInstance.docs.ResetToPending(r.Context(), id); err != nil {
		if errors.Is(err, docModel.ErrDocumentNotFound) {
			WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
			return
		}
		logRH.Error("Failed to reset document", "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, id, "Storage error")
		return
	}

	jobId := CreateNewJob(doc.Id, doc.Name, traceFromRequest(r))
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(doc.Id, jobId))
}

// GetDocumentHandler godoc
// @Summary      Get document status
// @Description  Returns the document's processing state and, for failed documents, the failure cause.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	id := utils.GetChiURLParam(r, "id")
	doc, found := handlerInstance.docs.GetDocument(r.Context(), id)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, id, "Document not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(doc))
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific extraction job using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse "The current status of the job"
// @Failure      404  {object}  api.JobResponse "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	idString := utils.GetChiURLParam(r, "id")
	result, isFound := validateId(idString, traceFromRequest(r))

	logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// AskHandler godoc
// @Summary      Ask a question over processed documents
// @Description  Answers synchronously from the caller's document chunks. An omitted session_id starts a new session; question and answer are appended to the session history.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question, optional session ID and top_k"
// @Success      200      {object}  api.AskResponse
// @Failure      400      {object}  api.JobResponse "Empty question or unknown session"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Ask handler reader :", "err", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		logRH.Warn("Bad Ask Request: ", "error:", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Bad Request")
		return
	}

	sessionId, ok := resolveSession(r, requestData.SessionId)
	if !ok {
		WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionId, "Unknown session")
		return
	}

	answer := handlerInstance.ragService.AnswerQuestion(r.Context(), ownerFromRequest(r), requestData.Question, requestData.TopK)

	appendToSession(r, sessionId, jobModel.ChatMessage{Role: "user", Content: requestData.Question})
	appendToSession(r, sessionId, jobModel.ChatMessage{
		Role:                  "assistant",
		Content:               answer.Text,
		ReferencedDocumentIds: answer.ReferencedDocumentIds,
	})

	writeJsonResponse(w, http.StatusOK, adapter.ToAskResponse(sessionId, requestData.Question, answer))
}

// resolveSession returns an existing validated session or starts a new one
// when the request carried no session id.
func resolveSession(r *http.Request, sessionId string) (string, bool) {
	store := handlerInstance.service.MessageStore
	if sessionId == "" {
		sessionId = utils.GetNewUUID()
		if err := store.InitNewSession(r.Context(), sessionId); err != nil {
			logRH.Error("Failed to init session", "err", err)
			return "", false
		}
		logRH.Debug("New ask session", "sessionId", sessionId)
		return sessionId, true
	}
	if !store.ValidateSessionId(r.Context(), sessionId) {
		return "", false
	}
	return sessionId, true
}

func appendToSession(r *http.Request, sessionId string, msg jobModel.ChatMessage) {
	if err := handlerInstance.service.MessageStore.AppendMessage(r.Context(), sessionId, msg); err != nil {
		logRH.Error("Failed to append session message", "sessionId", sessionId, "err", err)
	}
}

func traceFromRequest(r *http.Request) string {
	if trace, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return trace
	}
	return ""
}

// ownerFromRequest scopes retrieval and upload to the calling user. The
// bearer token authenticates the deployment, not individual users, so the
// owner travels in its own header.
func ownerFromRequest(r *http.Request) string {
	if owner := r.Header.Get("X-Owner-Id"); owner != "" {
		return owner
	}
	return "default"
}
