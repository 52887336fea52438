package articles

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/bilgisen/newsdesk/internal/models"
	"github.com/go-playground/validator/v10"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Validator checks article payloads.
type Validator struct {
	validate *validator.Validate
	rules    map[string]string
}

// NewValidator creates a validator with the slug rule registered and field
// names reported by their JSON key.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})

	rules := make(map[string]string)
	t := reflect.TypeOf(models.NewArticle{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		rules[jsonName(f)] = f.Tag.Get("validate")
	}
	return &Validator{validate: v, rules: rules}
}

// NewArticle validates a create payload.
func (v *Validator) NewArticle(input models.NewArticle) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.add(fe.Field(), fe.Tag())
	}
	return out
}

// Patch validates the set fields of a patch with the same rules as create.
func (v *Validator) Patch(patch models.ArticlePatch) error {
	out := &ValidationError{}
	check := func(set bool, field string, value any) {
		if !set {
			return
		}
		if err := v.field(field, value); err != "" {
			out.add(field, err)
		}
	}
	check(patch.Slug.Set, "slug", patch.Slug.Value)
	check(patch.Date.Set, "date", patch.Date.Value)
	check(patch.Kicker.Set, "kicker", patch.Kicker.Value)
	check(patch.Title.Set, "title", patch.Title.Value)
	check(patch.Excerpt.Set, "excerpt", patch.Excerpt.Value)
	check(patch.Content.Set, "content", patch.Content.Value)
	if patch.Meta.Set && patch.Meta.Value != nil {
		check(true, "meta", *patch.Meta.Value)
	}
	if patch.ImageURL.Set && patch.ImageURL.Value != nil {
		check(true, "image_url", *patch.ImageURL.Value)
	}
	return out.orNil()
}

func (v *Validator) field(name string, value any) string {
	rule := v.rules[name]
	if rule == "" {
		return ""
	}
	err := v.validate.Var(value, rule)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return "invalid"
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
