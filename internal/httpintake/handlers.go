package httpintake

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sage-ingest/sage/internal/model"
)

var validate = validator.New()

// submissionMeta is the subset of Submission fields the caller supplies
// explicitly (as opposed to those the handler derives from the request,
// like ReceivedAt and the file bytes). Bound from URL params, query
// params, and headers, then checked with go-playground/validator before a
// model.Submission is built.
type submissionMeta struct {
	SenderID    string        `validate:"required"`
	PackageName string        `validate:"required"`
	Channel     model.Channel `validate:"required,oneof=sftp email api filesystem direct_upload"`
	APIKey      string
	EmailSender string
	SourceHost  string
}

// handleSubmit accepts one package submission over HTTP and runs it through
// the Run Controller synchronously, returning the resulting Diagnostic.
// POST /v1/senders/{sender_id}/packages/{package_name}/submissions?channel=api
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	meta := submissionMeta{
		SenderID:    chi.URLParam(r, "sender_id"),
		PackageName: chi.URLParam(r, "package_name"),
		Channel:     model.Channel(r.URL.Query().Get("channel")),
		APIKey:      r.Header.Get("X-Sender-API-Key"),
		EmailSender: r.Header.Get("X-Email-Sender"),
		SourceHost:  r.Header.Get("X-Source-Host"),
	}
	if meta.Channel == "" {
		meta.Channel = model.ChannelAPI
	}
	if err := validate.Struct(meta); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "RUN_BAD_REQUEST")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.runCfg.MaxFileSize)

	blob, fileName, err := readSubmissionBody(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), "RUN_BAD_BODY")
		return
	}

	sub := model.Submission{
		SenderID:    meta.SenderID,
		PackageName: meta.PackageName,
		Channel:     meta.Channel,
		Blob:        blob,
		FileName:    fileName,
		ReceivedAt:  time.Now(),
		APIKey:      meta.APIKey,
		EmailSender: meta.EmailSender,
		SourceHost:  meta.SourceHost,
	}

	ctx, cancel := s.runCtx(r.Context())
	defer cancel()

	outcome := s.controller.Process(ctx, sub)
	writeJSON(w, statusFor(outcome), toRunResponse(outcome))
}

// readSubmissionBody reads either a multipart "file" field or, if the
// request isn't multipart, the raw request body (adapted from the
// teacher's internal/web/handlers_upload.go streaming-vs-raw distinction).
func readSubmissionBody(r *http.Request) (blob []byte, fileName string, err error) {
	if isMultipart(r) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return data, header.Filename, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return data, r.URL.Query().Get("file_name"), nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

// handleHealth is a liveness probe — it never touches the Schema or a
// destination connection, only confirms the process is serving.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
