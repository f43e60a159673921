package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/phrazzld/taktplan/internal/api/shared"
	"github.com/phrazzld/taktplan/internal/domain"
	"github.com/phrazzld/taktplan/internal/platform/logger"
	"github.com/phrazzld/taktplan/internal/service"
)

// uploadFieldName is the multipart field that carries the file.
const uploadFieldName = "file"

// maxFormFieldBytes bounds the non-file parts of an upload together.
const maxFormFieldBytes = 64 << 10

// maxUploadBodyBytes caps a whole upload request: one maximal file, the
// other form fields and room for multipart headers and boundaries.
const maxUploadBodyBytes = domain.MaxAttachmentSize + maxFormFieldBytes + 64<<10

// AttachmentHandler serves the attachment routes of a task.
type AttachmentHandler struct {
	attachments service.AttachmentService
}

// NewAttachmentHandler creates an AttachmentHandler backed by attachments.
func NewAttachmentHandler(attachments service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// UploadAttachment handles POST /api/tasks/{id}/attachments. The file part
// is streamed to the service without buffering the body.
func (h *AttachmentHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
	reader, err := r.MultipartReader()
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: %w", shared.ErrMalformedRequest, err), "")
		return
	}

	fieldBudget := int64(maxFormFieldBytes)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			HandleAPIError(w, r, domain.NewValidationError(uploadFieldName, "is required", nil), "")
			return
		}
		if err != nil {
			HandleAPIError(w, r, uploadReadError(err), "")
			return
		}
		if part.FormName() != uploadFieldName {
			n, err := io.Copy(io.Discard, io.LimitReader(part, fieldBudget+1))
			_ = part.Close()
			if err != nil {
				HandleAPIError(w, r, uploadReadError(err), "")
				return
			}
			if fieldBudget -= n; fieldBudget < 0 {
				HandleAPIError(w, r, fmt.Errorf("%w: form fields exceed %d bytes",
					shared.ErrMalformedRequest, maxFormFieldBytes), "")
				return
			}
			continue
		}

		attachment, err := h.attachments.CreateAttachment(r.Context(), user, taskID, service.Upload{
			FileName:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			HandleAPIError(w, r, uploadCopyError(err), "Failed to upload attachment")
			return
		}

		shared.RespondWithJSON(w, r, http.StatusCreated, attachmentToResponse(attachment))
		return
	}
}

// DownloadAttachment handles GET /api/tasks/{id}/attachments/{attachmentID}.
func (h *AttachmentHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	attachmentID, err := getPathUUID(r, "attachmentID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	attachment, body, err := h.attachments.OpenAttachment(r.Context(), user, taskID, attachmentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open attachment")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(attachment.SizeBytes, 10))
	w.Header().Set("Content-Disposition", contentDisposition(attachment.FileName))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		logger.FromContext(r.Context()).Warn("attachment download interrupted",
			slog.String("attachment_id", attachment.ID.String()),
			slog.String("error", err.Error()))
	}
}

// uploadReadError reports a body over the request cap as an oversized
// file and any other multipart failure as a malformed request.
func uploadReadError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: %w", domain.ErrFileTooLarge, err)
	}
	return fmt.Errorf("%w: %w", shared.ErrMalformedRequest, err)
}

// uploadCopyError reports the request cap tripping while the file is
// copied as an oversized file, like the same failure between parts.
func uploadCopyError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) && !errors.Is(err, domain.ErrFileTooLarge) {
		return fmt.Errorf("%w: %w", domain.ErrFileTooLarge, err)
	}
	return err
}

func contentDisposition(fileName string) string {
	if fileName == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}
