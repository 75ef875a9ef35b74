package validation

import (
	"context"
	"fmt"
	"strings"

	"carvedrock/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"
)

// NameChecker looks up whether a product name is still free.
type NameChecker interface {
	IsProductNameUnique(ctx context.Context, name string) (bool, error)
}

// Validator checks a new product submission before it is persisted.
type Validator interface {
	Validate(ctx context.Context, product domain.NewProduct) error
}

type rule struct {
	field   string
	kind    domain.FailureKind
	check   func(ctx context.Context, p domain.NewProduct) (bool, error)
	message func(p domain.NewProduct) string
}

// ProductValidator evaluates every rule against a submission and collects all failures.
type ProductValidator struct {
	names    NameChecker
	validate *validator.Validate
	rules    []rule
	logger   *zap.Logger
}

// NewProductValidator builds the rule table. names is consulted once per Validate call.
func NewProductValidator(names NameChecker, logger *zap.Logger) *ProductValidator {
	validate := validator.New()
	// notblank is part of the non-standard set and has to be registered explicitly
	_ = validate.RegisterValidation("notblank", validators.NotBlank)

	v := &ProductValidator{
		names:    names,
		validate: validate,
		logger:   logger,
	}
	v.rules = v.buildRules()
	return v
}

func (v *ProductValidator) buildRules() []rule {
	categoryTag := "oneof=" + strings.Join(domain.Categories, " ")

	return []rule{
		{"Name", domain.KindRequired, v.tag(func(p domain.NewProduct) string { return p.Name }, "notblank"), required("Name")},
		{"Name", domain.KindTooLong, v.tag(func(p domain.NewProduct) string { return p.Name }, "max=50"), tooLong("Name", 50)},
		{"Name", domain.KindDuplicate, v.uniqueName, func(domain.NewProduct) string {
			return "A product with the same name already exists."
		}},
		{"Description", domain.KindRequired, v.tag(func(p domain.NewProduct) string { return p.Description }, "notblank"), required("Description")},
		{"Description", domain.KindTooLong, v.tag(func(p domain.NewProduct) string { return p.Description }, "max=150"), tooLong("Description", 150)},
		{"Category", domain.KindInvalidCategory, v.tag(func(p domain.NewProduct) string { return p.Category }, categoryTag), func(domain.NewProduct) string {
			return fmt.Sprintf("Category must be one of %s.", strings.Join(domain.Categories, ","))
		}},
		{"Price", domain.KindOutOfRange, priceInRange, priceMessage},
		{"ImageUrl", domain.KindRequired, v.tag(func(p domain.NewProduct) string { return p.ImageURL }, "required"), required("ImageUrl")},
		{"ImageUrl", domain.KindInvalidURL, v.tag(func(p domain.NewProduct) string { return p.ImageURL }, "omitempty,url"), func(domain.NewProduct) string {
			return "ImageUrl must be a valid URL."
		}},
		{"ImageUrl", domain.KindTooLong, v.tag(func(p domain.NewProduct) string { return p.ImageURL }, "max=255"), tooLong("ImageUrl", 255)},
	}
}

// Validate returns nil for a valid submission, a *domain.ValidationError listing every failed
// rule, or the error of the uniqueness lookup.
func (v *ProductValidator) Validate(ctx context.Context, product domain.NewProduct) error {
	var failures []domain.FieldError

	for _, r := range v.rules {
		ok, err := r.check(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to validate %s: %w", r.field, err)
		}
		if !ok {
			failures = append(failures, domain.FieldError{
				Field:   r.field,
				Kind:    r.kind,
				Message: r.message(product),
			})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	verr := &domain.ValidationError{Errors: failures}
	v.logger.Info("Product submission rejected",
		zap.String("name", product.Name),
		zap.Strings("fields", verr.Fields()),
	)
	return verr
}

func (v *ProductValidator) tag(value func(domain.NewProduct) string, tag string) func(context.Context, domain.NewProduct) (bool, error) {
	return func(_ context.Context, p domain.NewProduct) (bool, error) {
		return v.validate.Var(value(p), tag) == nil, nil
	}
}

func (v *ProductValidator) uniqueName(ctx context.Context, p domain.NewProduct) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return v.names.IsProductNameUnique(ctx, p.Name)
}

func priceInRange(_ context.Context, p domain.NewProduct) (bool, error) {
	return domain.PriceInRange(p.Category, p.Price), nil
}

func priceMessage(p domain.NewProduct) string {
	r, ok := domain.PriceRanges[p.Category]
	if !ok {
		return "Price is out of range."
	}
	return fmt.Sprintf("Price for %s must be between $%s and $%s.", p.Category, r.Min.StringFixed(2), r.Max.StringFixed(2))
}

func required(field string) func(domain.NewProduct) string {
	msg := field + " is required."
	return func(domain.NewProduct) string { return msg }
}

func tooLong(field string, max int) func(domain.NewProduct) string {
	msg := fmt.Sprintf("%s must not exceed %d characters.", field, max)
	return func(domain.NewProduct) string { return msg }
}
