package media

type AssetType string

const (
	AssetTypeUpload    AssetType = "upload"
	AssetTypeThumbnail AssetType = "thumbnail"
)

// StoredImage describes one processed upload. Paths are relative to the
// storage root and always use forward slashes.
type StoredImage struct {
	OriginalPath  string
	ThumbnailPath string
	Width         int
	Height        int
}
