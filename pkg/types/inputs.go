// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. Field names in error
// messages come from json tags so they match the tool schema.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// checkStruct runs tag validation and converts the first failure into
// a ValidationError.
func checkStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return fmt.Errorf("validating input: %w", err)
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s characters or items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s characters or items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "is invalid"
	}
}

// SearchPapersInput carries the arguments of a paper search request.
type SearchPapersInput struct {
	Query          string `json:"query" validate:"required,min=1,max=500"`
	Title          string `json:"title,omitempty" validate:"omitempty,max=500"`
	Author         string `json:"author,omitempty" validate:"omitempty,max=200"`
	DOI            string `json:"doi,omitempty" validate:"omitempty,max=200"`
	YearFrom       int    `json:"year_from,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	YearTo         int    `json:"year_to,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	Venue          string `json:"venue,omitempty" validate:"omitempty,max=300"`
	Sort           string `json:"sort,omitempty" validate:"omitempty,oneof=relevance publication_date citation_count"`
	Limit          int    `json:"limit" validate:"gte=1,lte=100"`
	Offset         int    `json:"offset" validate:"gte=0"`
	ResponseFormat string `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

// Validate normalizes and checks the input. Year bounds are checked
// as a pair: year_from must not exceed year_to.
func (in *SearchPapersInput) Validate() error {
	in.Query = strings.TrimSpace(in.Query)
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.DOI = strings.TrimSpace(in.DOI)
	in.Venue = strings.TrimSpace(in.Venue)
	if err := checkStruct(in); err != nil {
		return err
	}
	return checkYearRange(in.YearFrom, in.YearTo)
}

// PaperDetailsInput carries the arguments of a paper lookup request.
type PaperDetailsInput struct {
	PaperID        string `json:"paper_id" validate:"required,min=1,max=500"`
	ResponseFormat string `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

func (in *PaperDetailsInput) Validate() error {
	in.PaperID = strings.TrimSpace(in.PaperID)
	return checkStruct(in)
}

// BibTeXInput carries the arguments of a BibTeX export request.
// PaperIDs is already split from the tool's comma-separated form.
type BibTeXInput struct {
	PaperIDs []string `json:"paper_ids" validate:"required,min=1,max=50,dive,min=1"`
	UseDBLP  bool     `json:"use_dblp"`
}

func (in *BibTeXInput) Validate() error {
	return checkStruct(in)
}

// CitationsInput carries the arguments of a citation listing request.
type CitationsInput struct {
	PaperID        string `json:"paper_id" validate:"required,min=1,max=500"`
	Limit          int    `json:"limit" validate:"gte=1,lte=100"`
	Offset         int    `json:"offset" validate:"gte=0"`
	ResponseFormat string `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

func (in *CitationsInput) Validate() error {
	in.PaperID = strings.TrimSpace(in.PaperID)
	return checkStruct(in)
}

// SearchAuthorInput carries the arguments of an author search request.
type SearchAuthorInput struct {
	AuthorName     string `json:"author_name" validate:"required,min=2,max=200"`
	Limit          int    `json:"limit" validate:"gte=1,lte=100"`
	Offset         int    `json:"offset" validate:"gte=0"`
	YearFrom       int    `json:"year_from,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	YearTo         int    `json:"year_to,omitempty" validate:"omitempty,gte=1900,lte=2100"`
	ResponseFormat string `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

func (in *SearchAuthorInput) Validate() error {
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	if err := checkStruct(in); err != nil {
		return err
	}
	return checkYearRange(in.YearFrom, in.YearTo)
}

// RelatedPapersInput carries the arguments of a recommendation request.
type RelatedPapersInput struct {
	PaperID        string `json:"paper_id" validate:"required,min=1,max=500"`
	Limit          int    `json:"limit" validate:"gte=1,lte=50"`
	ResponseFormat string `json:"response_format,omitempty" validate:"omitempty,oneof=markdown json"`
}

func (in *RelatedPapersInput) Validate() error {
	in.PaperID = strings.TrimSpace(in.PaperID)
	return checkStruct(in)
}

// CitationNetworkInput carries the arguments of a network request.
// Only single-hop networks are supported, so depth must be 1.
type CitationNetworkInput struct {
	PaperID   string `json:"paper_id" validate:"required,min=1,max=500"`
	Depth     int    `json:"depth" validate:"eq=1"`
	MaxNodes  int    `json:"max_nodes" validate:"gte=10,lte=200"`
	Direction string `json:"direction" validate:"oneof=citing cited both"`
}

func (in *CitationNetworkInput) Validate() error {
	in.PaperID = strings.TrimSpace(in.PaperID)
	return checkStruct(in)
}

func checkYearRange(from, to int) error {
	if from != 0 && to != 0 && from > to {
		return &ValidationError{Field: "year_from", Message: "must not exceed year_to"}
	}
	return nil
}

// SplitIDList splits a comma-separated identifier list, trimming
// whitespace and dropping empty segments.
func SplitIDList(s string) []string {
	parts := strings.Split(s, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
