package program

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension of stored programs.
const Ext = ".prog"

// NewProgramTemplate is the content of a freshly created program.
const NewProgramTemplate = "# put your program here\n"

var (
	ErrNotFound    = errors.New("program: not found")
	ErrExists      = errors.New("program: already exists")
	ErrInvalidName = errors.New("program: invalid name")
)

// Store keeps programs as <name>.prog files in a directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("program: create store: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the stored program names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("program: list: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Ext))
	}
	sort.Strings(names)

	return names, nil
}

// Create writes a new program holding NewProgramTemplate.
func (s *Store) Create(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, name)
		}

		return fmt.Errorf("program: create %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.WriteString(NewProgramTemplate); err != nil {
		return fmt.Errorf("program: create %s: %w", name, err)
	}

	return nil
}

// Save parses src and, if it is valid, stores it under name.
func (s *Store) Save(name, src string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if _, err := ParseString(name, src); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("program: save %s: %w", name, err)
	}

	return nil
}

// Load reads and parses a stored program.
func (s *Store) Load(name string) (*Program, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		return nil, fmt.Errorf("program: load %s: %w", name, err)
	}
	defer f.Close()

	return Parse(name, f)
}

// Delete removes a stored program.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}

		return fmt.Errorf("program: delete %s: %w", name, err)
	}

	return nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(s.dir, name+Ext), nil
}
