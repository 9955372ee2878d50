package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tecnomade/clouget-pos/pkg/db/pagination"
)

type ListCustomerRequest struct {
	PageToken      string
	PageSize       int32
	Name           string
	Identification string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

type ListCustomerFilter struct {
	Name           string
	Identification string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name               string
	IdentificationKind IdentificationKind
	Identification     string
	Email              string
	Phone              string
	Address            string
}

type UpdateCustomerRequest struct {
	ID                 string
	Name               string
	IdentificationKind IdentificationKind
	Identification     string
	Email              string
	Phone              string
	Address            string
}

type GetCustomerRequest struct {
	ID string
}

type AssignPriceListRequest struct {
	CustomerID string
	// PriceListID empty detaches the customer from its list.
	PriceListID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
	AssignPriceList(context.Context, AssignPriceListRequest) (Customer, error)
}

var (
	ErrInvalidName           = errors.New("invalid_name")
	ErrInvalidIdentification = errors.New("invalid_identification")
	ErrInvalidEmail          = errors.New("invalid_email")
	ErrInvalidID             = errors.New("invalid_id")
	ErrDuplicate             = errors.New("duplicate_identification")
	ErrNotFound              = errors.New("not_found")
)
