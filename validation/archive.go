package validation

import (
	"github.com/camden-git/agencybackend/models"
)

// ArchiveInput creates an archive under the model named in the URL.
type ArchiveInput struct {
	Title  string   `json:"title" validate:"min=1"`
	Images []string `json:"images" validate:"min=1"`
}

func DecodeArchiveInput(body []byte) (*ArchiveInput, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	in := &ArchiveInput{Title: deref(fr.str("title", true))}
	if images := fr.stringList("images", true); images != nil {
		in.Images = *images
	}

	if err := fr.finish(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (in *ArchiveInput) ToArchive(modelID string) *models.Archive {
	return &models.Archive{
		Title:   in.Title,
		Images:  in.Images,
		ModelID: modelID,
	}
}

// ArchivePatch is a partial archive update; a present images list must still
// hold at least one entry.
type ArchivePatch struct {
	Title  *string   `json:"title" validate:"omitnil,min=1"`
	Images *[]string `json:"images" validate:"omitnil,min=1"`
}

func DecodeArchivePatch(body []byte) (*ArchivePatch, error) {
	fr, err := newFieldReader(body)
	if err != nil {
		return nil, err
	}

	p := &ArchivePatch{
		Title:  fr.str("title", false),
		Images: fr.stringList("images", false),
	}

	if err := fr.finish(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *ArchivePatch) Apply(a *models.Archive) []string {
	var columns []string
	if p.Title != nil {
		a.Title = *p.Title
		columns = append(columns, "title")
	}
	if p.Images != nil {
		a.Images = *p.Images
		columns = append(columns, "images")
	}
	return columns
}
