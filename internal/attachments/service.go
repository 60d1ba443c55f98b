package attachments

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	pkgerrors "github.com/keranjangku/keranjangku-backend/pkg/errors"
	"github.com/keranjangku/keranjangku-backend/pkg/logger"
	"github.com/keranjangku/keranjangku-backend/pkg/storage"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type objectStore interface {
	SignedUploadURL(objectKey, contentType string) (string, error)
	SignedDownloadURL(objectKey string) (string, error)
	Delete(ctx context.Context, objectKey string) error
	MaxUploadSize() int64
}

var _ objectStore = (*storage.Client)(nil)

// CreateInput describes an upload the client wants to perform. The bytes
// never pass through the API; the response carries a signed PUT URL.
type CreateInput struct {
	ActorID   uuid.UUID
	BasketID  uuid.UUID
	StuffID   *uuid.UUID
	Name      string
	MimeType  string
	SizeBytes int64
}

// Service defines attachment operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*UploadTicketDTO, error)
	List(ctx context.Context, actorID, basketID uuid.UUID) ([]AttachmentDTO, error)
	Delete(ctx context.Context, actorID, attachmentID uuid.UUID) error
}

type service struct {
	repo  Repository
	tx    txRunner
	store objectStore
	logg  *logger.Logger
	now   func() time.Time
}

// NewService builds an attachments service with the required dependencies.
func NewService(repo Repository, tx txRunner, store objectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attachments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:  repo,
		tx:    tx,
		store: store,
		logg:  logg,
		now:   time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*UploadTicketDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "attachment name is required")
	}
	mime := strings.TrimSpace(input.MimeType)
	if mime == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime type is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size must be positive")
	}
	if input.SizeBytes > s.store.MaxUploadSize() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d byte upload limit", s.store.MaxUploadSize()))
	}

	var attachment *models.Attachment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		basket, err := repo.FindBasket(ctx, input.BasketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "basket not found")
		}
		share, err := repo.FindShare(ctx, input.BasketID, input.ActorID)
		if err != nil {
			return err
		}
		if err := CanAdd(basket, input.ActorID, share); err != nil {
			return err
		}
		if input.StuffID != nil {
			ok, err := repo.StuffInBasket(ctx, input.BasketID, *input.StuffID)
			if err != nil {
				return err
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "item does not belong to this basket")
			}
		}

		record := &models.Attachment{
			UserID:    input.ActorID,
			Name:      name,
			ObjectKey: s.objectKey(input.BasketID, name),
			MimeType:  mime,
			SizeBytes: input.SizeBytes,
		}
		if input.StuffID != nil {
			record.StuffID = input.StuffID
		} else {
			basketID := input.BasketID
			record.BasketID = &basketID
		}

		attachment, err = repo.Create(ctx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	uploadURL, err := s.store.SignedUploadURL(attachment.ObjectKey, mime)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to sign upload url")
	}

	logCtx := s.logg.WithBasketID(s.logg.WithUserID(ctx, input.ActorID.String()), input.BasketID.String())
	s.logg.Info(logCtx, "attachment registered")

	return &UploadTicketDTO{
		Attachment: ToDTO(attachment, ""),
		UploadURL:  uploadURL,
	}, nil
}

func (s *service) List(ctx context.Context, actorID, basketID uuid.UUID) ([]AttachmentDTO, error) {
	basket, err := s.repo.FindBasket(ctx, basketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "basket not found")
	}
	share, err := s.repo.FindShare(ctx, basketID, actorID)
	if err != nil {
		return nil, err
	}
	if err := CanView(basket, actorID, share); err != nil {
		return nil, err
	}

	attachments, err := s.repo.ListForBasket(ctx, basketID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AttachmentDTO, 0, len(attachments))
	for i := range attachments {
		url, err := s.store.SignedDownloadURL(attachments[i].ObjectKey)
		if err != nil {
			s.logg.Error(ctx, "failed to sign download url", err)
			url = ""
		}
		dtos = append(dtos, ToDTO(&attachments[i], url))
	}
	return dtos, nil
}

func (s *service) Delete(ctx context.Context, actorID, attachmentID uuid.UUID) error {
	var objectKey string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		attachment, err := repo.FindByID(ctx, attachmentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "attachment not found")
		}
		basketID, err := s.resolveBasketID(ctx, repo, attachment)
		if err != nil {
			return err
		}
		basket, err := repo.FindBasket(ctx, basketID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "basket not found")
		}
		share, err := repo.FindShare(ctx, basketID, actorID)
		if err != nil {
			return err
		}
		if err := CanDelete(basket, attachment, actorID, share); err != nil {
			return err
		}

		objectKey = attachment.ObjectKey
		return repo.Delete(ctx, attachmentID)
	})
	if err != nil {
		return err
	}

	// The row is gone; a failed object delete only leaves an orphan blob,
	// which the bucket lifecycle rule sweeps up.
	if err := s.store.Delete(ctx, objectKey); err != nil {
		s.logg.Error(ctx, "failed to delete attachment object", err)
	}
	return nil
}

func (s *service) resolveBasketID(ctx context.Context, repo Repository, attachment *models.Attachment) (uuid.UUID, error) {
	if attachment.BasketID != nil {
		return *attachment.BasketID, nil
	}
	if attachment.StuffID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "attachment has no parent")
	}
	line, err := repo.FindStuff(ctx, *attachment.StuffID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "item not found")
	}
	return line.BasketID, nil
}

func (s *service) objectKey(basketID uuid.UUID, name string) string {
	ext := path.Ext(name)
	return fmt.Sprintf("baskets/%s/%s%s", basketID, uuid.NewString(), ext)
}
