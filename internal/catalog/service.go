package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// maxIDAttempts bounds retries when a generated id is already taken.
const maxIDAttempts = 3

// ProductRepository persists products.
//
// ListProducts returns products ordered by description then id, and an empty
// slice (not nil) when there are none. Lookups and mutations of a missing id
// return ErrNotFound; CreateProduct on a taken id returns ErrAlreadyExists.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	CreateProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	SetProductPrint(ctx context.Context, id string, print bool) error
	DeleteProduct(ctx context.Context, id string) error
}

// QueueRepository persists queues. Same contract as ProductRepository with
// listing ordered by name then id.
type QueueRepository interface {
	ListQueues(ctx context.Context) ([]Queue, error)
	GetQueue(ctx context.Context, id string) (Queue, error)
	CreateQueue(ctx context.Context, q Queue) error
	UpdateQueue(ctx context.Context, q Queue) error
	DeleteQueue(ctx context.Context, id string) error
}

// Service is the catalog use-case layer shared by the web handlers, the CLI
// and the importer. Inputs are normalized and validated here so every entry
// point enforces the same rules.
type Service struct {
	products ProductRepository
	queues   QueueRepository
	ids      IDGenerator
	logger   *zap.Logger
}

// NewService wires a Service. A nil logger is replaced by a no-op logger and a
// nil generator by a MillisGenerator.
func NewService(products ProductRepository, queues QueueRepository, ids IDGenerator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = NewMillisGenerator()
	}
	return &Service{products: products, queues: queues, ids: ids, logger: logger}
}

// Products returns every product ordered by s.
func (s *Service) Products(ctx context.Context, sort Sort) ([]Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return SortProducts(products, sort), nil
}

// Printable returns the products flagged for printing in description order.
func (s *Service) Printable(ctx context.Context) ([]Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return Printable(SortProducts(products, DefaultSort())), nil
}

// Product returns one product or ErrNotFound.
func (s *Service) Product(ctx context.Context, id string) (Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// CreateProduct normalizes, validates and stores a new product.
// A generated id that is already taken (another process stamped the same
// millisecond) is retried with a fresh one.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in = NormalizeProductInput(in)
	if err := ValidateProduct(in); err != nil {
		return Product{}, err
	}
	for attempt := 1; ; attempt++ {
		p, err := s.createProduct(ctx, s.ids.Generate(ProductPrefix), in)
		if errors.Is(err, ErrAlreadyExists) && attempt < maxIDAttempts {
			continue
		}
		return p, err
	}
}

func (s *Service) createProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	in = NormalizeProductInput(in)
	if err := ValidateProduct(in); err != nil {
		return Product{}, err
	}

	p := Product{ID: id}.WithInput(in)
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	s.logMutation("create", "products", p.ID)
	return p, nil
}

// UpdateProduct replaces the editable fields of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	in = NormalizeProductInput(in)
	if err := ValidateProduct(in); err != nil {
		return Product{}, err
	}

	p := Product{ID: id}.WithInput(in)
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return Product{}, fmt.Errorf("update product %s: %w", id, err)
	}
	s.logMutation("update", "products", id)
	return p, nil
}

// SetPrint flips only the print flag of a product.
func (s *Service) SetPrint(ctx context.Context, id string, print bool) error {
	if err := s.products.SetProductPrint(ctx, id, print); err != nil {
		return fmt.Errorf("set print %s: %w", id, err)
	}
	s.logger.Info("catalog mutation",
		zap.String("op", "set_print"),
		zap.String("collection", "products"),
		zap.String("id", id),
		zap.Bool("print", print),
	)
	return nil
}

// DuplicateProduct stores a copy of id (see Duplicate) under a new id.
func (s *Service) DuplicateProduct(ctx context.Context, id string) (Product, error) {
	src, err := s.Product(ctx, id)
	if err != nil {
		return Product{}, err
	}
	return s.CreateProduct(ctx, Duplicate(src))
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	s.logMutation("delete", "products", id)
	return nil
}

// UpsertProduct updates id when it exists and creates it otherwise. An empty
// id always creates with a generated id. The bool reports creation.
func (s *Service) UpsertProduct(ctx context.Context, id string, in ProductInput) (Product, bool, error) {
	if id == "" {
		p, err := s.CreateProduct(ctx, in)
		return p, err == nil, err
	}
	p, err := s.UpdateProduct(ctx, id, in)
	if err == nil {
		return p, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Product{}, false, err
	}
	p, err = s.createProduct(ctx, id, in)
	return p, err == nil, err
}

// Queues returns every queue ordered by name then id.
func (s *Service) Queues(ctx context.Context) ([]Queue, error) {
	queues, err := s.queues.ListQueues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queues: %w", err)
	}
	return queues, nil
}

// Queue returns one queue or ErrNotFound.
func (s *Service) Queue(ctx context.Context, id string) (Queue, error) {
	q, err := s.queues.GetQueue(ctx, id)
	if err != nil {
		return Queue{}, fmt.Errorf("get queue %s: %w", id, err)
	}
	return q, nil
}

// CreateQueue normalizes, validates and stores a new queue.
func (s *Service) CreateQueue(ctx context.Context, in QueueInput) (Queue, error) {
	in = NormalizeQueueInput(in)
	if err := ValidateQueue(in); err != nil {
		return Queue{}, err
	}
	for attempt := 1; ; attempt++ {
		q, err := s.createQueue(ctx, s.ids.Generate(QueuePrefix), in)
		if errors.Is(err, ErrAlreadyExists) && attempt < maxIDAttempts {
			continue
		}
		return q, err
	}
}

func (s *Service) createQueue(ctx context.Context, id string, in QueueInput) (Queue, error) {
	in = NormalizeQueueInput(in)
	if err := ValidateQueue(in); err != nil {
		return Queue{}, err
	}

	q := Queue{ID: id}.WithInput(in)
	if err := s.queues.CreateQueue(ctx, q); err != nil {
		return Queue{}, fmt.Errorf("create queue: %w", err)
	}
	s.logMutation("create", "queues", q.ID)
	return q, nil
}

// UpdateQueue replaces the editable fields of an existing queue.
func (s *Service) UpdateQueue(ctx context.Context, id string, in QueueInput) (Queue, error) {
	in = NormalizeQueueInput(in)
	if err := ValidateQueue(in); err != nil {
		return Queue{}, err
	}

	q := Queue{ID: id}.WithInput(in)
	if err := s.queues.UpdateQueue(ctx, q); err != nil {
		return Queue{}, fmt.Errorf("update queue %s: %w", id, err)
	}
	s.logMutation("update", "queues", id)
	return q, nil
}

// DeleteQueue removes a queue.
func (s *Service) DeleteQueue(ctx context.Context, id string) error {
	if err := s.queues.DeleteQueue(ctx, id); err != nil {
		return fmt.Errorf("delete queue %s: %w", id, err)
	}
	s.logMutation("delete", "queues", id)
	return nil
}

// UpsertQueue is UpsertProduct for queues.
func (s *Service) UpsertQueue(ctx context.Context, id string, in QueueInput) (Queue, bool, error) {
	if id == "" {
		q, err := s.CreateQueue(ctx, in)
		return q, err == nil, err
	}
	q, err := s.UpdateQueue(ctx, id, in)
	if err == nil {
		return q, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Queue{}, false, err
	}
	q, err = s.createQueue(ctx, id, in)
	return q, err == nil, err
}

func (s *Service) logMutation(op, collection, id string) {
	s.logger.Info("catalog mutation",
		zap.String("op", op),
		zap.String("collection", collection),
		zap.String("id", id),
	)
}
