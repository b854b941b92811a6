package localwr

// Config defines the configuration options for the local file store.
type Config struct {
	// Root is the directory under which all files are stored.
	Root string `yaml:"root" validate:"required"`

	// MaxFileSize is the per-file size ceiling in bytes re-checked at save
	// time. Zero disables the check (full validation happens upstream).
	MaxFileSize int64 `yaml:"max_file_size" default:"10485760"`
}
