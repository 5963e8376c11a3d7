package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/EO-DataHub/eodhp-todo-services/models"
	"github.com/rs/zerolog"
)

const emptyDataFile = "[]"

// FileStore keeps all users as a single JSON array in one file. There is no
// file locking and no atomic rename, so a crash mid-write can leave a
// truncated file behind.
type FileStore struct {
	Path string
	Log  *zerolog.Logger
}

// NewFileStore returns a FileStore for path. A nil logger disables logging.
func NewFileStore(path string, log *zerolog.Logger) *FileStore {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &FileStore{Path: path, Log: log}
}

// Initialize creates the data file with an empty array if it is missing, and
// otherwise checks that it can be opened for reading and writing.
func (f *FileStore) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.Log.Info().Str("path", f.Path).Msg("Data file does not exist. Creating new file.")
			return f.create()
		}
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Failed to stat data file")
		return fmt.Errorf("%w: %w", ErrDataFileAccess, err)
	}

	if info.IsDir() {
		f.Log.Error().Str("path", f.Path).Msg("Data file path is a directory")
		return fmt.Errorf("%w: %s is a directory", ErrDataFileAccess, f.Path)
	}

	file, err := os.OpenFile(f.Path, os.O_RDWR, 0)
	if err != nil {
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Data file is not readable and writable")
		return fmt.Errorf("%w: %w", ErrDataFileAccess, err)
	}
	file.Close()

	f.Log.Info().Str("path", f.Path).Msg("Data file is accessible.")
	return nil
}

func (f *FileStore) create() error {
	if err := os.WriteFile(f.Path, []byte(emptyDataFile), 0o644); err != nil {
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Failed to create data file")
		return fmt.Errorf("%w: %w", ErrDataFileCreate, err)
	}
	f.Log.Info().Str("path", f.Path).Msg("Data file created with initial data: []")
	return nil
}

// ReadAll parses the data file. A missing, unreadable or malformed file is
// reported as ErrDataFileRead.
func (f *FileStore) ReadAll(ctx context.Context) ([]models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Failed to read data file")
		return nil, fmt.Errorf("%w: %w", ErrDataFileRead, err)
	}

	var users []models.User
	if err := json.Unmarshal(data, &users); err != nil {
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Failed to parse data file")
		return nil, fmt.Errorf("%w: %w", ErrDataFileRead, err)
	}

	return cloneUsers(users), nil
}

// WriteAll overwrites the data file with users.
func (f *FileStore) WriteAll(ctx context.Context, users []models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cloneUsers(users)); err != nil {
		return fmt.Errorf("%w: %w", ErrDataFileWrite, err)
	}

	if err := os.WriteFile(f.Path, buf.Bytes(), 0o644); err != nil {
		f.Log.Error().Err(err).Str("path", f.Path).Msg("Failed to write data file")
		return fmt.Errorf("%w: %w", ErrDataFileWrite, err)
	}

	f.Log.Debug().Str("path", f.Path).Int("users", len(users)).Msg("Data file has been updated successfully.")
	return nil
}
