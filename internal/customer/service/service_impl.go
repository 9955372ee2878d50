package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/clock"
	"github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/pkg/db"
	"github.com/tecnomade/clouget-pos/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	kind := req.IdentificationKind
	if kind == "" {
		kind = domain.IdentificationConsumer
	}

	identification := strings.TrimSpace(req.Identification)
	if err := validateIdentification(kind, identification); err != nil {
		return domain.Customer{}, err
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	if identification != "" {
		existing, err := s.repo.FindByIdentification(ctx, s.db, identification)
		if err != nil {
			return domain.Customer{}, err
		}
		if existing != nil {
			return domain.Customer{}, domain.ErrDuplicate
		}
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:                 s.genID.Generate(),
		Name:               name,
		IdentificationKind: kind,
		Identification:     optional(identification),
		Email:              optional(email),
		Phone:              optional(strings.TrimSpace(req.Phone)),
		Address:            optional(strings.TrimSpace(req.Address)),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Customer{}, domain.ErrDuplicate
		}
		return domain.Customer{}, err
	}

	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Customer{}, domain.ErrInvalidName
	}

	kind := req.IdentificationKind
	if kind == "" {
		kind = customer.IdentificationKind
	}
	identification := strings.TrimSpace(req.Identification)
	if err := validateIdentification(kind, identification); err != nil {
		return domain.Customer{}, err
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	customer.Name = name
	customer.IdentificationKind = kind
	customer.Identification = optional(identification)
	customer.Email = optional(email)
	customer.Phone = optional(strings.TrimSpace(req.Phone))
	customer.Address = optional(strings.TrimSpace(req.Address))
	customer.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	return *customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Name:           strings.TrimSpace(req.Name),
		Identification: strings.TrimSpace(req.Identification),
		CreatedFrom:    req.CreatedFrom,
		CreatedTo:      req.CreatedTo,
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(customer *domain.Customer) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        customer.ID.String(),
			CreatedAt: customer.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	resp := domain.ListCustomerResponse{Customers: customers}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	return *item, nil
}

func (s *Service) AssignPriceList(ctx context.Context, req domain.AssignPriceListRequest) (domain.Customer, error) {
	id, err := s.parseID(req.CustomerID)
	if err != nil {
		return domain.Customer{}, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if customer == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if strings.TrimSpace(req.PriceListID) == "" {
		customer.PriceListID = nil
	} else {
		listID, err := s.parseID(req.PriceListID)
		if err != nil {
			return domain.Customer{}, err
		}
		customer.PriceListID = &listID
	}
	customer.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, customer); err != nil {
		return domain.Customer{}, err
	}

	return *customer, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validateIdentification(kind domain.IdentificationKind, identification string) error {
	switch kind {
	case domain.IdentificationConsumer:
		return nil
	case domain.IdentificationRUC:
		if len(identification) != 13 || !digitsOnly(identification) {
			return domain.ErrInvalidIdentification
		}
	case domain.IdentificationCedula:
		if len(identification) != 10 || !digitsOnly(identification) {
			return domain.ErrInvalidIdentification
		}
	case domain.IdentificationPassport:
		if identification == "" {
			return domain.ErrInvalidIdentification
		}
	default:
		return domain.ErrInvalidIdentification
	}
	return nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
