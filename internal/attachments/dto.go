package attachments

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

// AttachmentDTO is the API shape of a stored attachment. DownloadURL is a
// short-lived signed URL minted on read; it is never persisted.
type AttachmentDTO struct {
	ID          uuid.UUID  `json:"id"`
	BasketID    *uuid.UUID `json:"basket_id,omitempty"`
	StuffID     *uuid.UUID `json:"stuff_id,omitempty"`
	UserID      uuid.UUID  `json:"user_id"`
	Name        string     `json:"name"`
	MimeType    string     `json:"mime_type"`
	SizeBytes   int64      `json:"size_bytes"`
	DownloadURL string     `json:"download_url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// UploadTicketDTO is returned on create: the metadata row plus the signed PUT
// URL the client uploads the bytes to.
type UploadTicketDTO struct {
	Attachment AttachmentDTO `json:"attachment"`
	UploadURL  string        `json:"upload_url"`
}

// ToDTO maps an attachment row to its API shape.
func ToDTO(a *models.Attachment, downloadURL string) AttachmentDTO {
	return AttachmentDTO{
		ID:          a.ID,
		BasketID:    a.BasketID,
		StuffID:     a.StuffID,
		UserID:      a.UserID,
		Name:        a.Name,
		MimeType:    a.MimeType,
		SizeBytes:   a.SizeBytes,
		DownloadURL: downloadURL,
		CreatedAt:   a.CreatedAt,
	}
}
