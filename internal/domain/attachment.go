package domain

import (
	"errors"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// MaxAttachmentSize is the largest accepted upload in bytes (2 MiB).
const MaxAttachmentSize int64 = 2 << 20

// MaxFileNameLength bounds the stored display name.
const MaxFileNameLength = 255

// maxKeyExtLength bounds the extension carried into a storage key.
const maxKeyExtLength = 16

// allowedContentTypes lists the media types an attachment may declare.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
}

var storageKeyPattern = regexp.MustCompile(`^[a-f0-9-]{36}(\.[a-z0-9]{1,16})?$`)

// Common validation errors for Attachment
var (
	ErrEmptyAttachmentID = errors.New("attachment ID cannot be empty")
	ErrEmptyFileName     = errors.New("file name cannot be empty")
	ErrFileNameTooLong   = errors.New("file name is too long")
	ErrInvalidStorageKey = errors.New("invalid storage key")
)

// Attachment is the metadata of a file stored for a task.
// StorageKey is generated by the server and is serialized as file_path.
type Attachment struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	FileName    string    `json:"file_name"`
	StorageKey  string    `json:"file_path"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	Checksum    string    `json:"checksum"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAttachment builds attachment metadata for bytes already stored under key.
func NewAttachment(taskID uuid.UUID, fileName, key, contentType string, size int64, checksum string) (*Attachment, error) {
	a := &Attachment{
		ID:          uuid.New(),
		TaskID:      taskID,
		FileName:    DisplayFileName(fileName),
		StorageKey:  key,
		ContentType: NormalizeContentType(contentType),
		SizeBytes:   size,
		Checksum:    checksum,
		CreatedAt:   time.Now().UTC(),
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks if the Attachment has valid data.
func (a *Attachment) Validate() error {
	if a.ID == uuid.Nil {
		return NewValidationError("id", "must not be empty", ErrEmptyAttachmentID)
	}
	if a.TaskID == uuid.Nil {
		return NewValidationError("task_id", "must not be empty", ErrEmptyTaskID)
	}
	if a.FileName == "" {
		return NewValidationError("file_name", "must not be empty", ErrEmptyFileName)
	}
	if len(a.FileName) > MaxFileNameLength {
		return NewValidationError("file_name", "must be at most 255 bytes", ErrFileNameTooLong)
	}
	if !ValidStorageKey(a.StorageKey) {
		return NewValidationError("file_path", "is not a generated storage key", ErrInvalidStorageKey)
	}
	return ValidateUpload(a.ContentType, a.SizeBytes)
}

// NormalizeContentType lower-cases a media type and drops its parameters,
// so "Image/PNG; charset=binary" becomes "image/png". Unparseable input is
// returned trimmed and lower-cased.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// IsAllowedContentType reports whether contentType may be attached.
func IsAllowedContentType(contentType string) bool {
	_, ok := allowedContentTypes[NormalizeContentType(contentType)]
	return ok
}

// ValidateUpload checks the declared content type and size of an upload.
// The type check runs first.
func ValidateUpload(contentType string, size int64) error {
	if !IsAllowedContentType(contentType) {
		return fmt.Errorf("%w: %q is not one of image/jpeg, image/png, application/pdf",
			ErrInvalidFileType, NormalizeContentType(contentType))
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrFileTooLarge, size, MaxAttachmentSize)
	}
	if size < 0 {
		return NewValidationError("file", "size must not be negative", nil)
	}
	return nil
}

// DisplayFileName strips any directory components a client sent along with
// the file name. Both slash styles are treated as separators. Invalid UTF-8
// and control characters, NUL included, are dropped since PostgreSQL text
// columns reject them.
func DisplayFileName(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(strings.TrimSpace(name))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// NewStorageKey returns a fresh key of the form <uuid>.<ext>, where ext is
// the lower-cased extension of fileName reduced to [a-z0-9]. A name without
// a usable extension yields a bare uuid.
func NewStorageKey(fileName string) string {
	key := uuid.NewString()
	if ext := keyExtension(fileName); ext != "" {
		key += "." + ext
	}
	return key
}

// ValidStorageKey reports whether key has the shape produced by NewStorageKey.
func ValidStorageKey(key string) bool {
	return storageKeyPattern.MatchString(key)
}

func keyExtension(fileName string) string {
	ext := path.Ext(DisplayFileName(fileName))
	if ext == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range strings.ToLower(ext[1:]) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == maxKeyExtLength {
			break
		}
	}
	return b.String()
}
