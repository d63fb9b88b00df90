// Package catalog содержит статические каталоги дашборда: финансы, API, базу знаний, планы обучения и FAQ
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"fleet-curation-service/internal/models"
)

// ErrIncomplete ошибка авторинга данных: у сущности каталога нет обязательного поля
var ErrIncomplete = errors.New("catalog entity is incomplete")

var catalogValidate = validator.New()

// Catalog набор статических коллекций, которые проходят в снапшот без изменений
type Catalog struct {
	Financials    []models.FinancialSnapshot `validate:"dive"`
	APISurfaces   []models.APISurface        `validate:"dive"`
	Knowledge     []models.KnowledgeSlice    `validate:"dive"`
	TrainingPlans []models.TrainingPlan      `validate:"dive"`
	FAQ           []models.FAQEntry          `validate:"dive"`
}

// Validate проверяет структурную полноту и уникальность идентификаторов
func (c Catalog) Validate() error {
	if err := catalogValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrIncomplete, err)
	}

	ids := make(map[string]string)
	check := func(kind, id string) error {
		key := kind + "/" + id
		if _, dup := ids[key]; dup {
			return fmt.Errorf("%w: duplicate %s id %q", ErrIncomplete, kind, id)
		}
		ids[key] = id
		return nil
	}
	for _, f := range c.Financials {
		if err := check("financial", f.ID); err != nil {
			return err
		}
	}
	for _, a := range c.APISurfaces {
		if err := check("api", a.ID); err != nil {
			return err
		}
	}
	for _, k := range c.Knowledge {
		if err := check("knowledge", k.ID); err != nil {
			return err
		}
	}
	for _, p := range c.TrainingPlans {
		if err := check("training", p.ID); err != nil {
			return err
		}
	}
	for _, q := range c.FAQ {
		if err := check("faq", q.ID); err != nil {
			return err
		}
	}
	return nil
}

// Clone возвращает глубокую копию, чтобы снапшоты не делили срезы с каталогом
func (c Catalog) Clone() Catalog {
	out := Catalog{
		Financials:    append(make([]models.FinancialSnapshot, 0, len(c.Financials)), c.Financials...),
		APISurfaces:   append(make([]models.APISurface, 0, len(c.APISurfaces)), c.APISurfaces...),
		Knowledge:     make([]models.KnowledgeSlice, 0, len(c.Knowledge)),
		TrainingPlans: make([]models.TrainingPlan, 0, len(c.TrainingPlans)),
		FAQ:           make([]models.FAQEntry, 0, len(c.FAQ)),
	}
	for _, k := range c.Knowledge {
		k.Tags = append([]string(nil), k.Tags...)
		out.Knowledge = append(out.Knowledge, k)
	}
	for _, p := range c.TrainingPlans {
		p.Milestones = append([]models.Milestone(nil), p.Milestones...)
		out.TrainingPlans = append(out.TrainingPlans, p)
	}
	for _, q := range c.FAQ {
		q.Keywords = append([]string(nil), q.Keywords...)
		out.FAQ = append(out.FAQ, q)
	}
	return out
}
