package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tecnomade/clouget-pos/internal/clock"
	customerdomain "github.com/tecnomade/clouget-pos/internal/customer/domain"
	"github.com/tecnomade/clouget-pos/internal/pricelist/domain"
	productdomain "github.com/tecnomade/clouget-pos/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ProductRepo  productdomain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	productRepo  productdomain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("pricelist.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		productRepo:  p.ProductRepo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) CreateList(ctx context.Context, req domain.CreateListRequest) (domain.PriceList, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.PriceList{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	list := domain.PriceList{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		IsDefault: req.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := s.repo.ClearDefault(ctx, tx); err != nil {
				return err
			}
		}
		return s.repo.InsertList(ctx, tx, &list)
	})
	if err != nil {
		return domain.PriceList{}, err
	}
	return list, nil
}

func (s *Service) ListLists(ctx context.Context) ([]domain.PriceList, error) {
	return s.repo.ListLists(ctx, s.db)
}

func (s *Service) GetList(ctx context.Context, id string) (domain.PriceList, error) {
	listID, err := s.parseID(id)
	if err != nil {
		return domain.PriceList{}, err
	}
	list, err := s.repo.FindListByID(ctx, s.db, listID)
	if err != nil {
		return domain.PriceList{}, err
	}
	if list == nil {
		return domain.PriceList{}, domain.ErrNotFound
	}
	return *list, nil
}

func (s *Service) SetDefault(ctx context.Context, id string) (domain.PriceList, error) {
	listID, err := s.parseID(id)
	if err != nil {
		return domain.PriceList{}, err
	}

	var updated domain.PriceList
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := s.repo.FindListByID(ctx, tx, listID)
		if err != nil {
			return err
		}
		if list == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.ClearDefault(ctx, tx); err != nil {
			return err
		}
		list.IsDefault = true
		list.UpdatedAt = s.clock.Now()
		if err := s.repo.SaveList(ctx, tx, list); err != nil {
			return err
		}
		updated = *list
		return nil
	})
	if err != nil {
		return domain.PriceList{}, err
	}
	return updated, nil
}

func (s *Service) SetProductPrice(ctx context.Context, req domain.SetProductPriceRequest) (domain.ProductPrice, error) {
	listID, err := s.parseID(req.PriceListID)
	if err != nil {
		return domain.ProductPrice{}, err
	}
	productID, err := s.parseID(req.ProductID)
	if err != nil {
		return domain.ProductPrice{}, err
	}
	if req.Price.IsNegative() {
		return domain.ProductPrice{}, domain.ErrInvalidPrice
	}

	list, err := s.repo.FindListByID(ctx, s.db, listID)
	if err != nil {
		return domain.ProductPrice{}, err
	}
	if list == nil {
		return domain.ProductPrice{}, domain.ErrNotFound
	}
	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.ProductPrice{}, err
	}
	if product == nil {
		return domain.ProductPrice{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	price := domain.ProductPrice{
		ID:          s.genID.Generate().Int64(),
		PriceListID: listID,
		ProductID:   productID,
		Price:       req.Price.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertPrice(ctx, s.db, &price); err != nil {
		return domain.ProductPrice{}, err
	}
	return price, nil
}

func (s *Service) RemoveProductPrice(ctx context.Context, req domain.RemoveProductPriceRequest) error {
	listID, err := s.parseID(req.PriceListID)
	if err != nil {
		return err
	}
	productID, err := s.parseID(req.ProductID)
	if err != nil {
		return err
	}
	return s.repo.DeletePrice(ctx, s.db, listID, productID)
}

func (s *Service) ListPrices(ctx context.Context, priceListID string) ([]domain.ProductPrice, error) {
	listID, err := s.parseID(priceListID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPrices(ctx, s.db, listID)
}

func (s *Service) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolvedPrice, error) {
	productID, err := s.parseID(req.ProductID)
	if err != nil {
		return domain.ResolvedPrice{}, err
	}
	product, err := s.productRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.ResolvedPrice{}, err
	}
	if product == nil {
		return domain.ResolvedPrice{}, domain.ErrNotFound
	}

	customerListID := s.customerListID(ctx, req.CustomerID)
	return s.resolveProduct(ctx, product, customerListID), nil
}

func (s *Service) ResolveCart(ctx context.Context, customerID string, items []domain.CartItem) ([]domain.ResolvedPrice, error) {
	customerListID := s.customerListID(ctx, customerID)

	resolved := make([]domain.ResolvedPrice, 0, len(items))
	for _, item := range items {
		productID, err := s.parseID(item.ProductID)
		if err != nil {
			return nil, err
		}
		product, err := s.productRepo.FindByID(ctx, s.db, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, domain.ErrNotFound
		}
		resolved = append(resolved, s.resolveProduct(ctx, product, customerListID))
	}
	return resolved, nil
}

// resolveProduct runs the waterfall. Lookup failures on a list step are
// logged and the resolution degrades to the next step instead of failing.
func (s *Service) resolveProduct(ctx context.Context, product *productdomain.Product, customerListID *int64) domain.ResolvedPrice {
	if customerListID != nil {
		price, err := s.repo.FindPrice(ctx, s.db, *customerListID, product.ID)
		if err != nil {
			s.log.Warn("customer list lookup failed, falling back",
				zap.Int64("product_id", product.ID),
				zap.Error(err))
		} else if price != nil {
			return domain.ResolvedPrice{
				ProductID: product.ID,
				Price:     price.Price,
				Source:    domain.SourceCustomerList,
			}
		}
	}

	defaultList, err := s.repo.FindDefaultList(ctx, s.db)
	if err != nil {
		s.log.Warn("default list lookup failed, falling back", zap.Error(err))
	} else if defaultList != nil {
		price, err := s.repo.FindPrice(ctx, s.db, defaultList.ID, product.ID)
		if err != nil {
			s.log.Warn("default list price lookup failed, falling back",
				zap.Int64("product_id", product.ID),
				zap.Error(err))
		} else if price != nil {
			return domain.ResolvedPrice{
				ProductID: product.ID,
				Price:     price.Price,
				Source:    domain.SourceDefaultList,
			}
		}
	}

	return domain.ResolvedPrice{
		ProductID: product.ID,
		Price:     product.BasePrice,
		Source:    domain.SourceBase,
	}
}

func (s *Service) customerListID(ctx context.Context, customerID string) *int64 {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil
	}
	id, err := snowflake.ParseString(customerID)
	if err != nil {
		return nil
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, id)
	if err != nil || customer == nil || customer.PriceListID == nil {
		return nil
	}
	listID := customer.PriceListID.Int64()
	return &listID
}

func (s *Service) parseID(value string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}
