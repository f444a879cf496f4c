package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/safari-backoffice/internal/apperror"
	"github.com/iliyamo/safari-backoffice/internal/model"
	"github.com/iliyamo/safari-backoffice/internal/repository"
	"github.com/iliyamo/safari-backoffice/internal/validation"
)

// ClientInput is a request to record a client.
type ClientInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Company string `json:"company" validate:"max=255"`
	Email   string `json:"email" validate:"max=255"`
	Phone   string `json:"phone" validate:"max=64"`
	Country string `json:"country" validate:"max=128"`
}

// HotelInput is a request to record a hotel.
type HotelInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Location    string `json:"location" validate:"max=255"`
	Email       string `json:"email" validate:"max=255"`
	Phone       string `json:"phone" validate:"max=64"`
	MpesaNumber string `json:"mpesaNumber" validate:"max=64"`
	BankDetails string `json:"bankDetails" validate:"max=2000"`
}

// DirectoryService keeps an operator's clients and hotels.
type DirectoryService struct {
	clients  *repository.ClientRepo
	hotels   *repository.HotelRepo
	validate *validation.Validator
	now      func() time.Time
}

func NewDirectoryService(clients *repository.ClientRepo, hotels *repository.HotelRepo, v *validation.Validator) *DirectoryService {
	return &DirectoryService{clients: clients, hotels: hotels, validate: v, now: time.Now}
}

func (s *DirectoryService) CreateClient(ctx context.Context, actor uint64, in ClientInput) (*model.Client, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in, in.Name, "Client name is required", "Invalid client details"); err != nil {
		return nil, err
	}
	c := &model.Client{
		OwnerID:   actor,
		Name:      in.Name,
		Company:   strings.TrimSpace(in.Company),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Country:   strings.TrimSpace(in.Country),
		CreatedAt: utcNow(s.now),
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, wrap("create client", err)
	}
	return c, nil
}

// ListClients returns actor's clients, newest first.
func (s *DirectoryService) ListClients(ctx context.Context, actor uint64) ([]model.Client, error) {
	out, err := s.clients.ListByOwner(ctx, actor)
	if err != nil {
		return nil, wrap("list clients", err)
	}
	return out, nil
}

func (s *DirectoryService) CreateHotel(ctx context.Context, actor uint64, in HotelInput) (*model.Hotel, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in, in.Name, "Hotel name is required", "Invalid hotel details"); err != nil {
		return nil, err
	}
	h := &model.Hotel{
		OwnerID:     actor,
		Name:        in.Name,
		Location:    strings.TrimSpace(in.Location),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		MpesaNumber: strings.TrimSpace(in.MpesaNumber),
		BankDetails: strings.TrimSpace(in.BankDetails),
		CreatedAt:   utcNow(s.now),
	}
	if err := s.hotels.Create(ctx, h); err != nil {
		return nil, wrap("create hotel", err)
	}
	return h, nil
}

// ListHotels returns actor's hotels, newest first.
func (s *DirectoryService) ListHotels(ctx context.Context, actor uint64) ([]model.Hotel, error) {
	out, err := s.hotels.ListByOwner(ctx, actor)
	if err != nil {
		return nil, wrap("list hotels", err)
	}
	return out, nil
}

func (s *DirectoryService) check(in any, name, missingName, invalid string) error {
	if name == "" {
		return apperror.Validation(missingName)
	}
	if err := s.validate.Struct(in); err != nil {
		var ferrs validation.FieldErrors
		if errors.As(err, &ferrs) {
			return apperror.Validation(invalid).WithDetails(ferrs.Details())
		}
		return apperror.Internal("validate", err)
	}
	return nil
}
