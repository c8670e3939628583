package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qs3c/ecomwords_server/internal/model"
	"github.com/qs3c/ecomwords_server/internal/repository"
)

var ErrListingNotFound = errors.New("listing not found")

type ListingService struct {
	listingRepo *repository.ListingRepository
}

func NewListingService(listingRepo *repository.ListingRepository) *ListingService {
	return &ListingService{listingRepo: listingRepo}
}

// Save 保存一条生成结果
func (s *ListingService) Save(email string, content *model.GeneratedContent, productName string) (*model.SavedListing, error) {
	listing := &model.SavedListing{
		ID:          uuid.NewString(),
		UserEmail:   model.NormalizeEmail(email),
		ProductName: strings.TrimSpace(productName),
		Titles:      model.StringArray(content.Titles),
		Description: content.Description,
		Bullets:     model.StringArray(content.Bullets),
		Keywords:    model.StringArray(content.Keywords),
		SavedAt:     time.Now(),
	}
	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// List 最新保存的在前
func (s *ListingService) List(email string) ([]*model.SavedListing, error) {
	return s.listingRepo.ListByEmail(email)
}

// Delete 只能删除自己的文案
func (s *ListingService) Delete(email, id string) error {
	affected, err := s.listingRepo.Delete(email, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (s *ListingService) DeleteAll(email string) error {
	return s.listingRepo.DeleteByEmail(email)
}
