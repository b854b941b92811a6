package upload

// Config defines the bounds enforced on uploaded image files.
type Config struct {
	// MinFileSize is the smallest accepted file in bytes. Default 1KB.
	MinFileSize int64 `yaml:"min_file_size" default:"1024"`

	// MaxFileSize is the largest accepted file in bytes. Default 10MB.
	MaxFileSize int64 `yaml:"max_file_size" default:"10485760"`

	// AllowedMimeTypes lists the accepted declared MIME types.
	AllowedMimeTypes []string `yaml:"allowed_mime_types"`

	// AllowedExtensions lists the accepted filename extensions (without dot).
	AllowedExtensions []string `yaml:"allowed_extensions"`

	// MinWidth/MaxWidth bound the decoded pixel width. Defaults 1 to 10000.
	MinWidth int `yaml:"min_width" default:"1"`
	MaxWidth int `yaml:"max_width" default:"10000"`

	// MinHeight/MaxHeight bound the decoded pixel height. Defaults 1 to 10000.
	MinHeight int `yaml:"min_height" default:"1"`
	MaxHeight int `yaml:"max_height" default:"10000"`
}

// defaults for the list fields, which the defaults library cannot express.
func (c *Config) normalize() {
	if len(c.AllowedMimeTypes) == 0 {
		c.AllowedMimeTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}
	}
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = []string{"jpg", "jpeg", "png", "webp", "gif"}
	}
}
