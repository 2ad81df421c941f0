package accounts

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// MaxUploadBytes caps the size of an uploaded profile image.
const MaxUploadBytes = 5 << 20

var ErrFileTooLarge = errors.New("uploaded file too large")

// FileStore writes uploaded profile images to a local directory with
// timestamped names so repeated uploads of the same filename never collide.
type FileStore struct {
	Dir string
}

// Save stores an uploaded image and returns its path. Files that are not
// jpeg or png are dropped without error and an empty path is returned; the
// registration proceeds without an image.
func (fs *FileStore) Save(file multipart.File, header *multipart.FileHeader) (string, error) {
	switch header.Header.Get("Content-Type") {
	case "image/jpeg", "image/png":
	default:
		return "", nil
	}

	if header.Size > MaxUploadBytes {
		return "", ErrFileTooLarge
	}

	if err := os.MkdirAll(fs.Dir, 0o755); err != nil {
		return "", err
	}

	name := time.Now().UTC().Format(time.RFC3339Nano) + header.Filename
	path := filepath.Join(fs.Dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}

	return path, nil
}
