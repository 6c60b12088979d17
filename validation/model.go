package validation

import (
	"github.com/camden-git/agencybackend/models"
)

// ModelInput is a complete model payload used for creation.
type ModelInput struct {
	Name         string   `json:"name" validate:"min=1"`
	Slug         string   `json:"slug" validate:"min=1"`
	Category     string   `json:"category" validate:"oneof=ALL INTOWN UPCOMING"`
	Nationality  string   `json:"nationality" validate:"min=1"`
	ProfileImage string   `json:"profileImage" validate:"min=1"`
	Images       []string `json:"images"`
	Bio          *string  `json:"bio"`
	Height       *int     `json:"height" validate:"omitnil,gt=0"`
	Measurements *string  `json:"measurements"`
	Instagram    *string  `json:"instagram"`
}

// DecodeModelInput parses and validates a model creation body.
func DecodeModelInput(body []byte) (*ModelInput, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	in := &ModelInput{}
	in.Name = deref(fr.str("name", true))
	in.Slug = deref(fr.str("slug", true))
	in.Category = deref(fr.str("category", true))
	in.Nationality = deref(fr.str("nationality", true))
	in.ProfileImage = deref(fr.str("profileImage", true))
	if images := fr.stringList("images", false); images != nil {
		in.Images = *images
	}
	in.Bio = fr.str("bio", false)
	in.Height = fr.integer("height", false)
	in.Measurements = fr.str("measurements", false)
	in.Instagram = fr.str("instagram", false)

	if err := fr.finish(in); err != nil {
		return nil, err
	}
	return in, nil
}

// ToModel builds a new, unsaved model from the input.
func (in *ModelInput) ToModel() *models.Model {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return &models.Model{
		Name:         in.Name,
		Slug:         in.Slug,
		Category:     models.Category(in.Category),
		Nationality:  in.Nationality,
		ProfileImage: in.ProfileImage,
		Images:       images,
		Bio:          in.Bio,
		Height:       in.Height,
		Measurements: in.Measurements,
		Instagram:    in.Instagram,
	}
}

// ModelPatch is a partial model update. A nil field was absent from the
// request and is left untouched.
type ModelPatch struct {
	Name         *string   `json:"name" validate:"omitnil,min=1"`
	Slug         *string   `json:"slug" validate:"omitnil,min=1"`
	Category     *string   `json:"category" validate:"omitnil,oneof=ALL INTOWN UPCOMING"`
	Nationality  *string   `json:"nationality" validate:"omitnil,min=1"`
	ProfileImage *string   `json:"profileImage" validate:"omitnil,min=1"`
	Images       *[]string `json:"images"`
	Bio          *string   `json:"bio"`
	Height       *int      `json:"height" validate:"omitnil,gt=0"`
	Measurements *string   `json:"measurements"`
	Instagram    *string   `json:"instagram"`
}

// DecodeModelPatch parses and validates a partial model update body.
// Unknown keys are ignored; an explicit null is a type error.
func DecodeModelPatch(body []byte) (*ModelPatch, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	p := &ModelPatch{
		Name:         fr.str("name", false),
		Slug:         fr.str("slug", false),
		Category:     fr.str("category", false),
		Nationality:  fr.str("nationality", false),
		ProfileImage: fr.str("profileImage", false),
		Images:       fr.stringList("images", false),
		Bio:          fr.str("bio", false),
		Height:       fr.integer("height", false),
		Measurements: fr.str("measurements", false),
		Instagram:    fr.str("instagram", false),
	}

	if err := fr.finish(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Empty reports whether the patch changes nothing.
func (p *ModelPatch) Empty() bool {
	return p.Name == nil && p.Slug == nil && p.Category == nil && p.Nationality == nil &&
		p.ProfileImage == nil && p.Images == nil && p.Bio == nil && p.Height == nil &&
		p.Measurements == nil && p.Instagram == nil
}

// Apply writes the present fields onto m and returns their column names.
func (p *ModelPatch) Apply(m *models.Model) []string {
	var columns []string
	if p.Name != nil {
		m.Name = *p.Name
		columns = append(columns, "name")
	}
	if p.Slug != nil {
		m.Slug = *p.Slug
		columns = append(columns, "slug")
	}
	if p.Category != nil {
		m.Category = models.Category(*p.Category)
		columns = append(columns, "category")
	}
	if p.Nationality != nil {
		m.Nationality = *p.Nationality
		columns = append(columns, "nationality")
	}
	if p.ProfileImage != nil {
		m.ProfileImage = *p.ProfileImage
		columns = append(columns, "profile_image")
	}
	if p.Images != nil {
		m.Images = *p.Images
		columns = append(columns, "images")
	}
	if p.Bio != nil {
		m.Bio = p.Bio
		columns = append(columns, "bio")
	}
	if p.Height != nil {
		m.Height = p.Height
		columns = append(columns, "height")
	}
	if p.Measurements != nil {
		m.Measurements = p.Measurements
		columns = append(columns, "measurements")
	}
	if p.Instagram != nil {
		m.Instagram = p.Instagram
		columns = append(columns, "instagram")
	}
	return columns
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
