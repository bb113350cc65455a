package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/gophdrive/internal/common"
	"github.com/dmitrijs2005/gophdrive/internal/server/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput checks struct tags on a service input and reports failures
// as common.ErrorValidation.
func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", common.ErrorValidation, strings.Join(msgs, "; "))
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, msg)
}

// notFound prefixes a repository ErrorNotFound with what was missing.
func notFound(what string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%s %w", what, common.ErrorNotFound)
	}
	return err
}

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListParams are the caller-supplied sorting and paging knobs. Zero values
// fall back to createdAt descending, page 1, ten items. Page is bounded so
// the row offset cannot overflow.
type ListParams struct {
	SortBy    string
	SortOrder string `validate:"omitempty,oneof=asc desc"`
	Page      int    `validate:"gte=0,lte=1000000"`
	Limit     int    `validate:"gte=0"`
}

func (p ListParams) query() (models.ListQuery, error) {
	if err := validateInput(p); err != nil {
		return models.ListQuery{}, err
	}
	q := models.ListQuery{
		SortBy:    p.SortBy,
		SortOrder: p.SortOrder,
		Page:      p.Page,
		Limit:     p.Limit,
	}
	if q.SortBy == "" {
		q.SortBy = "createdAt"
	}
	if q.SortOrder == "" {
		q.SortOrder = models.SortDesc
	}
	if q.Page == 0 {
		q.Page = defaultPage
	}
	if q.Limit == 0 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
