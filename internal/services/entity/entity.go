// Package entity provides CRUD for the master records placements reference:
// salespeople, clients, and contractors.
package entity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"contractbill-system/internal/database/models"
	"contractbill-system/internal/services/apperr"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CreateSalesperson(ctx context.Context, name, email string) (*models.Salesperson, error) {
	if name == "" || email == "" {
		return nil, apperr.InvalidInput("salesperson name and email are required")
	}
	salesperson := models.Salesperson{Name: name, Email: email, Status: models.EntityActive}
	if err := s.db.WithContext(ctx).Create(&salesperson).Error; err != nil {
		return nil, err
	}
	return &salesperson, nil
}

func (s *Service) GetSalesperson(ctx context.Context, id int64) (*models.Salesperson, error) {
	var salesperson models.Salesperson
	if err := s.db.WithContext(ctx).First(&salesperson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Salesperson", id)
		}
		return nil, err
	}
	return &salesperson, nil
}

func (s *Service) ListSalespeople(ctx context.Context) ([]models.Salesperson, error) {
	var salespeople []models.Salesperson
	err := s.db.WithContext(ctx).Order("name asc").Find(&salespeople).Error
	return salespeople, err
}

func (s *Service) DeactivateSalesperson(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).
		Model(&models.Salesperson{}).
		Where("id = ?", id).
		Update("status", models.EntityInactive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Salesperson", id)
	}
	return nil
}

type ClientInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
	Address       string
}

func (s *Service) CreateClient(ctx context.Context, in ClientInput) (*models.Client, error) {
	if in.Name == "" {
		return nil, apperr.InvalidInput("client name is required")
	}
	client := models.Client{
		Name:          in.Name,
		ContactPerson: in.ContactPerson,
		Email:         in.Email,
		Phone:         in.Phone,
		Address:       in.Address,
		Status:        models.EntityActive,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client", id)
		}
		return nil, err
	}
	return &client, nil
}

func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := s.db.WithContext(ctx).Order("name asc").Find(&clients).Error
	return clients, err
}

type ContractorInput struct {
	Name  string
	Email string
	Phone string
	Type  models.ContractorType
}

func (s *Service) CreateContractor(ctx context.Context, in ContractorInput) (*models.Contractor, error) {
	if in.Name == "" {
		return nil, apperr.InvalidInput("contractor name is required")
	}
	if in.Type != models.ContractorTypeContractor && in.Type != models.ContractorTypePermanent {
		return nil, apperr.InvalidInput("unknown contractor type %q", in.Type)
	}
	contractor := models.Contractor{
		Name:   in.Name,
		Email:  in.Email,
		Phone:  in.Phone,
		Type:   in.Type,
		Status: models.EntityActive,
	}
	if err := s.db.WithContext(ctx).Create(&contractor).Error; err != nil {
		return nil, err
	}
	return &contractor, nil
}

func (s *Service) GetContractor(ctx context.Context, id int64) (*models.Contractor, error) {
	var contractor models.Contractor
	if err := s.db.WithContext(ctx).First(&contractor, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Contractor", id)
		}
		return nil, err
	}
	return &contractor, nil
}

func (s *Service) ListContractors(ctx context.Context) ([]models.Contractor, error) {
	var contractors []models.Contractor
	err := s.db.WithContext(ctx).Order("name asc").Find(&contractors).Error
	return contractors, err
}
