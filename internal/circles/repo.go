package circles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, circle *models.Circle) (*models.Circle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Circle, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Circle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateMember(ctx context.Context, member *models.CircleMember) (*models.CircleMember, error)
	FindMember(ctx context.Context, circleID, userID uuid.UUID) (*models.CircleMember, error)
	ListMembers(ctx context.Context, circleIDs []uuid.UUID) ([]CircleMemberDTO, error)
	DeleteMember(ctx context.Context, id uuid.UUID) error

	FindUsername(ctx context.Context, userID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a circles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, circle *models.Circle) (*models.Circle, error) {
	if err := r.db.WithContext(ctx).Create(circle).Error; err != nil {
		return nil, err
	}
	return circle, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error) {
	var circle models.Circle
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&circle).Error
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Circle, error) {
	var circle models.Circle
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&circle).Error
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Circle, error) {
	var circles []models.Circle
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&circles).Error
	if err != nil {
		return nil, err
	}
	return circles, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Circle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("circle_id = ?", id).
		Delete(&models.CircleMember{}).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Circle{}).Error
}

func (r *repository) CreateMember(ctx context.Context, member *models.CircleMember) (*models.CircleMember, error) {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return member, nil
}

func (r *repository) FindMember(ctx context.Context, circleID, userID uuid.UUID) (*models.CircleMember, error) {
	var member models.CircleMember
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

type memberRecord struct {
	models.CircleMember
	Username string `gorm:"column:username"`
}

func (r *repository) ListMembers(ctx context.Context, circleIDs []uuid.UUID) ([]CircleMemberDTO, error) {
	if len(circleIDs) == 0 {
		return nil, nil
	}
	var records []memberRecord
	err := r.db.WithContext(ctx).
		Table("circle_members AS m").
		Select("m.*, u.username AS username").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.circle_id IN ?", circleIDs).
		Order("m.created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	members := make([]CircleMemberDTO, 0, len(records))
	for i := range records {
		members = append(members, ToMemberDTO(&records[i].CircleMember, records[i].Username))
	}
	return members, nil
}

func (r *repository) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CircleMember{}).Error
}

func (r *repository) FindUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	var username string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("username").
		Where("id = ?", userID).
		Take(&username).Error
	if err != nil {
		return "", err
	}
	return username, nil
}
