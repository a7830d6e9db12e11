package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/storefront-cart/internal/catalog/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

const searchLimit = 100

type Service struct {
	repo ProductRepo
}

func NewService(repo ProductRepo) *Service {
	return &Service{
		repo: repo,
	}
}

type CreateProductInput struct {
	Name        string
	Handle      string
	Category    string
	Description string
	Currency    string
	Amount      int64
	Sizes       []string
	Colors      []string
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	currency := strings.TrimSpace(in.Currency)

	if name == "" || currency == "" || in.Amount <= 0 {
		return domain.Product{}, ErrInvalidInput
	}

	base := in.Handle
	if strings.TrimSpace(base) == "" {
		base = name
	}
	handle, err := s.UniqueHandle(ctx, base)
	if err != nil {
		return domain.Product{}, err
	}

	p := domain.Product{
		Name:        name,
		Handle:      handle,
		Category:    strings.TrimSpace(in.Category),
		Description: in.Description,
		Price: domain.Money{
			Currency: currency,
			Amount:   in.Amount,
		},
		Sizes:  in.Sizes,
		Colors: in.Colors,
	}

	product, err := s.repo.Create(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

// UniqueHandle slugifies base and appends -1, -2, ... until the handle is
// not taken by another product.
func (s *Service) UniqueHandle(ctx context.Context, base string) (string, error) {
	root := domain.Slugify(base)
	if root == "" {
		root = domain.DefaultHandle
	}

	candidate := root
	for attempt := 1; ; attempt++ {
		used, err := s.repo.HandleExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check handle %q: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", root, attempt)
	}
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Product{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, strings.TrimSpace(id))
}

func (s *Service) ListProducts(ctx context.Context, query string, limit int, cursor string) ([]domain.Product, string, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, strings.TrimSpace(query), limit, cursor)
}

// Search matches query against product names and categories. A blank
// query matches nothing.
func (s *Service) Search(ctx context.Context, query string) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Product{}, nil
	}
	out, _, err := s.repo.List(ctx, query, searchLimit, "")
	if err != nil {
		return nil, err
	}
	return out, nil
}
